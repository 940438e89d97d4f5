package main

import (
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/academicyear"
	"github.com/trezcool/darasa/core/activitylog"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/fees"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/role"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	restsvc "github.com/trezcool/darasa/services/rest"
	"github.com/trezcool/darasa/storage/keyval/filestore"
	"github.com/trezcool/darasa/storage/keyval/redisstore"
)

func main() {
	conf := core.NewConfig()

	var logger core.Logger = logsvc.NewStdLogger(conf)
	if conf.Rollbar.Token != "" {
		logger = logsvc.NewRollbarLogger(logger, conf)
	}

	keys, err := openKeystore(conf)
	if err != nil {
		logger.Fatal("opening keystore", err)
	}

	api, err := restsvc.NewClient(conf, keys, logger)
	if err != nil {
		logger.Fatal("building API client", err)
	}

	cli := &commandLine{
		out:      os.Stdout,
		session:  user.NewSession(api, keys, logger),
		users:    user.NewStore(api),
		schools:  school.NewStore(api),
		years:    academicyear.NewStore(api, keys, logger),
		classes:  class.NewStore(api),
		sections: class.NewSectionStore(api),
		subjects: subject.NewStore(api),
		fees:     fees.NewStore(api),
		feeHeads: fees.NewHeadStore(api),
		roles:    role.NewStore(api),
		reports:  report.NewStore(api),
		logs:     activitylog.NewStore(api),
	}

	// rehydrate persisted state before the first command
	cli.session.Hydrate()
	cli.years.Hydrate()

	if err = cli.run(os.Args); err != nil {
		if err == errHelp {
			os.Exit(2)
		}
		logger.Fatal("command failed", err)
	}
}

func openKeystore(conf *core.Config) (core.Keystore, error) {
	if conf.Keystore.Backend == "redis" {
		return redisstore.New(conf.Keystore)
	}
	return filestore.New(conf.Keystore.Path)
}
