package testutil

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"

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
	restsvc "github.com/trezcool/darasa/services/rest"
)

// Client returns a dispatcher wired to the fake backend and the given
// keystore.
func (b *Backend) Client(t *testing.T, keys core.Keystore) *restsvc.Client {
	t.Helper()
	client, err := restsvc.NewClient(b.Config(), keys, NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	return client
}

// Token returns a signed bearer token for a seeded user, bypassing login.
func (b *Backend) Token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := b.makeToken(usr)
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return token
}

// seeders: records are appended as-is so tests control the ids.

func (b *Backend) AddUser(usr user.User, pwd string) user.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append(b.users, usr)
	b.passwords[usr.Username] = pwd
	return usr
}

func (b *Backend) AddSchool(sch school.School) school.School {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.schools = append(b.schools, sch)
	return sch
}

func (b *Backend) AddYear(y academicyear.Year) academicyear.Year {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.years = append(b.years, y)
	return y
}

func (b *Backend) AddClass(cl class.Class) class.Class {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.classes = append(b.classes, cl)
	return cl
}

func (b *Backend) AddSection(sec class.Section) class.Section {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sections = append(b.sections, sec)
	return sec
}

func (b *Backend) AddSubject(sub subject.Subject) subject.Subject {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subjects = append(b.subjects, sub)
	return sub
}

func (b *Backend) AddFee(f fees.Fee) fees.Fee {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fees = append(b.fees, f)
	return f
}

func (b *Backend) AddFeeHead(h fees.FeeHead) fees.FeeHead {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.feeHeads = append(b.feeHeads, h)
	return h
}

func (b *Backend) AddRole(r role.Role) role.Role {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roles = append(b.roles, r)
	return r
}

func (b *Backend) AddEnrollment(schoolID string, row report.Enrollment) report.Enrollment {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enrolled[schoolID] = append(b.enrolled[schoolID], row)
	return row
}

func (b *Backend) AddLog(l activitylog.Log) activitylog.Log {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logs = append(b.logs, l)
	return l
}

// Logger adapts testing.T to core.Logger so client logs land in test output.
type Logger struct {
	t *testing.T
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger { return &Logger{t: t} }

func (l Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l Logger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }

func (l Logger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	l.t.Logf("%s %s %v", level, msg, args)
}

// Diff returns a unified diff of want vs got, for readable failure output.
func Diff(want, got string) string {
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	return diff
}
