package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/darasa/core/academicyear"
	"github.com/trezcool/darasa/core/activitylog"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/fees"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/role"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/subject"
	"github.com/trezcool/darasa/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out io.Writer

	session  *user.Session
	users    *user.Store
	schools  *school.Store
	years    *academicyear.Store
	classes  *class.Store
	sections *class.SectionStore
	subjects *subject.Store
	fees     *fees.Store
	feeHeads *fees.HeadStore
	roles    *role.Store
	reports  *report.Store
	logs     *activitylog.Store
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME|EMAIL          - log in (password prompted)")
	fmt.Fprintln(cli.out, "  logout                                  - destroy the current session")
	fmt.Fprintln(cli.out, "  whoami                                  - fetch and print the current user")
	fmt.Fprintln(cli.out, "  schools                                 - list schools")
	fmt.Fprintln(cli.out, "  users [-page N] [-limit N]              - list users")
	fmt.Fprintln(cli.out, "  years -school ID [-activate YID] [-archive YID] [-select YID]")
	fmt.Fprintln(cli.out, "  classes -school ID                      - list classes of a school")
	fmt.Fprintln(cli.out, "  sections                                - list sections")
	fmt.Fprintln(cli.out, "  subjects -school ID                     - list subjects of a school")
	fmt.Fprintln(cli.out, "  fees -school ID [-heads] [-delete FID]  - list fees or fee heads, delete a fee")
	fmt.Fprintln(cli.out, "  roles                                   - list roles")
	fmt.Fprintln(cli.out, "  logs [-page N] [-limit N]               - list activity logs")
	fmt.Fprintln(cli.out, "  report -school ID                       - enrollment and fee-collection report")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	switch args[1] {
	case "login":
		return cli.loginCmd(ctx, args[2:])
	case "logout":
		cli.session.Logout()
		fmt.Fprintln(cli.out, "logged out")
		return nil
	case "whoami":
		return cli.whoami(ctx)
	case "schools":
		return cli.listSchools(ctx)
	case "users":
		return cli.listUsers(ctx, args[2:])
	case "years":
		return cli.yearsCmd(ctx, args[2:])
	case "classes":
		return cli.listClasses(ctx, args[2:])
	case "sections":
		return cli.listSections(ctx)
	case "subjects":
		return cli.listSubjects(ctx, args[2:])
	case "fees":
		return cli.feesCmd(ctx, args[2:])
	case "roles":
		return cli.listRoles(ctx)
	case "logs":
		return cli.listLogs(ctx, args[2:])
	case "report":
		return cli.reportCmd(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) loginCmd(ctx context.Context, args []string) error {
	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	uname := loginCmd.String("username", "", "The username or email. The password will be prompted next.")
	if err := loginCmd.Parse(args); err != nil {
		return err
	}
	if *uname == "" {
		loginCmd.Usage()
		return errHelp
	}

	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}

	if err = cli.session.Login(ctx, user.Credentials{Username: *uname, Password: string(pwd)}); err != nil {
		return err
	}
	if usr, ok := cli.session.Current(); ok {
		fmt.Fprintf(cli.out, "logged in as %s <%s>\n", usr.Name, usr.Email)
	}
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	if !cli.session.Authenticated() {
		fmt.Fprintln(cli.out, "not logged in")
		return nil
	}
	if cli.session.Expired() {
		fmt.Fprintln(cli.out, "session expired; log in again")
		return nil
	}
	if err := cli.session.FetchCurrent(ctx); err != nil {
		return err
	}
	usr, _ := cli.session.Current()
	fmt.Fprintf(cli.out, "%s <%s> roles=%v\n", usr.Name, usr.Email, usr.Roles)
	return nil
}

func (cli *commandLine) listSchools(ctx context.Context) error {
	if err := cli.requireCap(role.CapManageSchools); err != nil {
		return err
	}
	if err := cli.schools.FetchAll(ctx); err != nil {
		return err
	}
	for _, sch := range cli.schools.Items() {
		fmt.Fprintf(cli.out, "%s  %s\n", sch.ID, sch.Name)
	}
	return nil
}

func (cli *commandLine) listUsers(ctx context.Context, args []string) error {
	usersCmd := flag.NewFlagSet("users", flag.ExitOnError)
	page := usersCmd.Int("page", 1, "Page number.")
	limit := usersCmd.Int("limit", 20, "Page size.")
	if err := usersCmd.Parse(args); err != nil {
		return err
	}
	if err := cli.requireCap(role.CapManageUsers); err != nil {
		return err
	}
	if err := cli.users.FetchPage(ctx, *page, *limit); err != nil {
		return err
	}
	pg := cli.users.Pagination()
	for _, usr := range cli.users.Items() {
		status := "active"
		if !usr.IsActive {
			status = "inactive"
		}
		fmt.Fprintf(cli.out, "%s  %s <%s> %s %v\n", usr.ID, usr.Name, usr.Email, status, usr.Roles)
	}
	fmt.Fprintf(cli.out, "page %d/%d (%d total)\n", pg.Page, pg.Pages, pg.Total)
	return nil
}

func (cli *commandLine) yearsCmd(ctx context.Context, args []string) error {
	yearsCmd := flag.NewFlagSet("years", flag.ExitOnError)
	schoolID := yearsCmd.String("school", "", "The school id.")
	activate := yearsCmd.String("activate", "", "Activate the given academic year.")
	archive := yearsCmd.String("archive", "", "Archive the given academic year.")
	selectID := yearsCmd.String("select", "", "Point this session at the given academic year.")
	if err := yearsCmd.Parse(args); err != nil {
		return err
	}
	if *schoolID == "" {
		yearsCmd.Usage()
		return errHelp
	}

	if err := cli.years.FetchBySchool(ctx, *schoolID); err != nil {
		return err
	}
	switch {
	case *activate != "":
		if err := cli.years.Activate(ctx, *activate); err != nil {
			return err
		}
	case *archive != "":
		if err := cli.years.Archive(ctx, *archive); err != nil {
			return err
		}
	case *selectID != "":
		if err := cli.years.SelectYear(*selectID); err != nil {
			return err
		}
	}

	selected, _ := cli.years.SelectedYear()
	for _, y := range cli.years.Items() {
		marker := " "
		switch {
		case y.Archived:
			marker = "x"
		case y.IsActive:
			marker = "*"
		}
		viewing := ""
		if y.ID == selected.ID {
			viewing = " (viewing)"
		}
		fmt.Fprintf(cli.out, "%s %s  %s%s\n", marker, y.ID, y.Name, viewing)
	}
	return nil
}

func (cli *commandLine) listClasses(ctx context.Context, args []string) error {
	classesCmd := flag.NewFlagSet("classes", flag.ExitOnError)
	schoolID := classesCmd.String("school", "", "The school id.")
	if err := classesCmd.Parse(args); err != nil {
		return err
	}
	if err := cli.classes.FetchBySchool(ctx, *schoolID); err != nil {
		return err
	}
	for _, cl := range cli.classes.Items() {
		fmt.Fprintf(cli.out, "%s  %s (%d sections)\n", cl.ID, cl.Name, len(cl.Sections))
	}
	return nil
}

func (cli *commandLine) listSections(ctx context.Context) error {
	if err := cli.sections.FetchAll(ctx); err != nil {
		return err
	}
	for _, sec := range cli.sections.Items() {
		fmt.Fprintf(cli.out, "%s  %s\n", sec.ID, sec.Name)
	}
	return nil
}

func (cli *commandLine) listSubjects(ctx context.Context, args []string) error {
	subjectsCmd := flag.NewFlagSet("subjects", flag.ExitOnError)
	schoolID := subjectsCmd.String("school", "", "The school id.")
	if err := subjectsCmd.Parse(args); err != nil {
		return err
	}
	if err := cli.subjects.FetchBySchool(ctx, *schoolID); err != nil {
		return err
	}
	for _, sub := range cli.subjects.Items() {
		fmt.Fprintf(cli.out, "%s  %s %s\n", sub.ID, sub.Code, sub.Name)
	}
	return nil
}

func (cli *commandLine) feesCmd(ctx context.Context, args []string) error {
	feesCmd := flag.NewFlagSet("fees", flag.ExitOnError)
	schoolID := feesCmd.String("school", "", "The school id.")
	deleteID := feesCmd.String("delete", "", "Delete the given fee record.")
	heads := feesCmd.Bool("heads", false, "List the fee heads instead of fee records.")
	if err := feesCmd.Parse(args); err != nil {
		return err
	}
	if err := cli.requireCap(role.CapManageFees); err != nil {
		return err
	}
	if *heads {
		if err := cli.feeHeads.FetchAll(ctx); err != nil {
			return err
		}
		for _, h := range cli.feeHeads.Items() {
			fmt.Fprintf(cli.out, "%s  %s amount=%s\n", h.ID, h.Name, h.Amount)
		}
		return nil
	}
	if *deleteID != "" {
		if err := cli.fees.Delete(ctx, *deleteID); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "deleted fee %s\n", *deleteID)
		return nil
	}
	if err := cli.fees.FetchBySchool(ctx, *schoolID); err != nil {
		return err
	}
	for _, f := range cli.fees.Items() {
		fmt.Fprintf(cli.out, "%s  student=%s amount=%s paid=%t\n", f.ID, f.StudentID, f.Amount, f.Paid)
	}
	return nil
}

func (cli *commandLine) listRoles(ctx context.Context) error {
	if err := cli.roles.FetchAll(ctx); err != nil {
		return err
	}
	for _, r := range cli.roles.Items() {
		fmt.Fprintf(cli.out, "%s  %s (%s)\n", r.ID, r.Name, r.Value)
	}
	return nil
}

func (cli *commandLine) listLogs(ctx context.Context, args []string) error {
	logsCmd := flag.NewFlagSet("logs", flag.ExitOnError)
	page := logsCmd.Int("page", 1, "Page number.")
	limit := logsCmd.Int("limit", 20, "Page size.")
	if err := logsCmd.Parse(args); err != nil {
		return err
	}
	if err := cli.requireCap(role.CapViewActivityLogs); err != nil {
		return err
	}
	if err := cli.logs.FetchPage(ctx, *page, *limit); err != nil {
		return err
	}
	pg := cli.logs.Pagination()
	for _, l := range cli.logs.Items() {
		fmt.Fprintf(cli.out, "%s  %s %s %s\n", l.CreatedAt.Format("2006-01-02 15:04"), l.Action, l.Entity, l.Detail)
	}
	fmt.Fprintf(cli.out, "page %d/%d (%d total)\n", pg.Page, pg.Pages, pg.Total)
	return nil
}

func (cli *commandLine) reportCmd(ctx context.Context, args []string) error {
	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	schoolID := reportCmd.String("school", "", "The school id.")
	if err := reportCmd.Parse(args); err != nil {
		return err
	}
	if err := cli.requireCap(role.CapViewReports); err != nil {
		return err
	}
	if err := cli.reports.FetchEnrollment(ctx, *schoolID); err != nil {
		return err
	}
	for _, row := range cli.reports.Items() {
		fmt.Fprintf(cli.out, "%-24s %d students\n", row.ClassName, row.Students)
	}
	if err := cli.reports.FetchFeesSummary(ctx, *schoolID); err != nil {
		return err
	}
	if summary, ok := cli.reports.FeesSummary(); ok {
		fmt.Fprintf(cli.out, "fees: collected=%s outstanding=%s\n", summary.Collected, summary.Outstanding)
	}
	return nil
}

// requireCap refuses a command locally when the logged-in user's roles do not
// grant the capability; the server remains the authority.
func (cli *commandLine) requireCap(c role.Capability) error {
	usr, ok := cli.session.Current()
	if !ok {
		return errors.New("not logged in")
	}
	if !usr.Can(c) {
		return fmt.Errorf("%s is not allowed to do this", usr.Username)
	}
	return nil
}
