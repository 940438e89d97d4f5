// Package testutil hosts the shared test tooling: a fake backend API
// implementing the documented REST contract over in-memory tables, plus
// small assertion helpers.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
)

var signingKey = []byte("testing-secret")

// Backend is a fake school-management API. Success payloads nest under
// `data` (paginated lists under `data.data` + `pagination`); failures carry
// a `message` body. Authenticated routes require `Authorization: Bearer`.
type Backend struct {
	mu        sync.Mutex
	users     []user.User
	passwords map[string]string // username -> password
	schools   []school.School
	years     []academicyear.Year
	classes   []class.Class
	sections  []class.Section
	subjects  []subject.Subject
	fees      []fees.Fee
	feeHeads  []fees.FeeHead
	roles     []role.Role
	logs      []activitylog.Log
	enrolled  map[string][]report.Enrollment // schoolID -> rows

	srv *httptest.Server
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		passwords: make(map[string]string),
		enrolled:  make(map[string][]report.Enrollment),
	}

	app := echo.New()
	app.HideBanner = true

	app.POST("/user/login", b.login)
	app.GET("/user/currentUser", b.auth(b.currentUser))
	app.GET("/user", b.auth(b.listUsers))
	app.POST("/user", b.auth(b.createUser))

	app.GET("/school", b.auth(b.listSchools))
	app.GET("/school/:id", b.auth(b.getSchool))
	app.POST("/school", b.auth(b.createSchool))
	app.PATCH("/school/:id", b.auth(b.updateSchool))

	app.GET("/academicYear/school/:schoolId", b.auth(b.listYears))
	app.POST("/academicYear", b.auth(b.createYear))
	app.POST("/academicYear/activate/:id", b.auth(b.activateYear))
	app.POST("/academicYear/archive/:id", b.auth(b.archiveYear))

	app.GET("/class/school/:schoolId", b.auth(b.listClasses))
	app.POST("/class", b.auth(b.createClass))
	app.PATCH("/class/:id", b.auth(b.updateClass))
	app.DELETE("/class/:id", b.auth(b.deleteClass))

	app.GET("/section", b.auth(b.listSections))
	app.POST("/section", b.auth(b.createSection))

	app.GET("/subject/school/:schoolId", b.auth(b.listSubjects))
	app.POST("/subject", b.auth(b.createSubject))
	app.PATCH("/subject/:id", b.auth(b.updateSubject))
	app.DELETE("/subject/:id", b.auth(b.deleteSubject))

	app.GET("/fees/school/:schoolId", b.auth(b.listFees))
	app.POST("/fees", b.auth(b.createFee))
	app.DELETE("/fees/:id", b.auth(b.deleteFee))
	app.GET("/fee-heads", b.auth(b.listFeeHeads))
	app.POST("/fee-heads", b.auth(b.createFeeHead))

	app.GET("/role", b.auth(b.listRoles))
	app.POST("/role", b.auth(b.createRole))
	app.DELETE("/role/:id", b.auth(b.deleteRole))

	app.GET("/report/enrollment/:schoolId", b.auth(b.enrollmentReport))
	app.GET("/report/fees/:schoolId", b.auth(b.feesReport))

	app.GET("/activity-logs", b.auth(b.listLogs))
	app.POST("/activity-logs", b.auth(b.createLog))
	app.DELETE("/activity-logs/:id", b.auth(b.deleteLog))

	b.srv = httptest.NewServer(app)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *Backend) URL() string { return b.srv.URL }

// Config returns an app config pointed at the fake backend.
func (b *Backend) Config() *core.Config {
	return &core.Config{
		AppName:  "Darasa",
		Env:      "TEST",
		TestMode: true,
		API:      core.APIConfig{BaseURL: b.srv.URL, Timeout: 5 * time.Second},
	}
}

// envelopes

func data(c echo.Context, code int, v interface{}) error {
	return c.JSON(code, echo.Map{"data": v})
}

func pagedData(c echo.Context, v interface{}, page core.Page) error {
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"data": v, "pagination": page}})
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"message": msg})
}

// auth middleware: any parseable bearer token signed with the test key is
// accepted; its subject names the user.
func (b *Backend) auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if len(header) < 8 || header[:7] != "Bearer " {
			return fail(c, http.StatusUnauthorized, "missing or malformed token")
		}
		claims := new(user.Claims)
		_, err := jwt.ParseWithClaims(header[7:], claims, func(*jwt.Token) (interface{}, error) {
			return signingKey, nil
		})
		if err != nil {
			return fail(c, http.StatusUnauthorized, "invalid or expired token")
		}
		c.Set("userID", claims.Subject)
		return next(c)
	}
}

// user handlers

func (b *Backend) login(c echo.Context) error {
	var creds user.Credentials
	if err := c.Bind(&creds); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, usr := range b.users {
		if usr.Username == creds.Username && b.passwords[usr.Username] == creds.Password {
			token, err := b.makeToken(usr)
			if err != nil {
				return fail(c, http.StatusInternalServerError, "signing token")
			}
			return data(c, http.StatusOK, echo.Map{"accessToken": token, "user": usr})
		}
	}
	return fail(c, http.StatusBadRequest, "invalid credentials")
}

func (b *Backend) makeToken(usr user.User) (string, error) {
	claims := &user.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    "Darasa",
			Subject:   usr.ID,
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
		Username: usr.Username,
		Email:    usr.Email,
		IsAdmin:  usr.IsAdmin(),
		Roles:    usr.Roles,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

func (b *Backend) currentUser(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, usr := range b.users {
		if usr.ID == c.Get("userID") {
			return data(c, http.StatusOK, usr)
		}
	}
	return fail(c, http.StatusUnauthorized, "unknown user")
}

func (b *Backend) listUsers(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	page, limit := pageParams(c)
	start, end := pageBounds(len(b.users), page, limit)
	return pagedData(c, b.users[start:end], core.Page{
		Page: page, Limit: limit, Total: len(b.users), Pages: pages(len(b.users), limit),
	})
}

func (b *Backend) createUser(c echo.Context) error {
	var nu user.NewUser
	if err := c.Bind(&nu); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	usr := user.User{
		ID:       uuid.NewString(),
		Name:     nu.Name,
		Username: nu.Username,
		Email:    nu.Email,
		IsActive: true,
		SchoolID: nu.SchoolID,
		Roles:    nu.Roles,
	}
	b.mu.Lock()
	b.users = append(b.users, usr)
	b.passwords[usr.Username] = nu.Password
	b.mu.Unlock()
	return data(c, http.StatusCreated, usr)
}

// school handlers

func (b *Backend) listSchools(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return data(c, http.StatusOK, b.schools)
}

func (b *Backend) getSchool(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sch := range b.schools {
		if sch.ID == c.Param("id") {
			return data(c, http.StatusOK, sch)
		}
	}
	return fail(c, http.StatusNotFound, "school not found")
}

func (b *Backend) createSchool(c echo.Context) error {
	var ns school.NewSchool
	if err := c.Bind(&ns); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	sch := school.School{ID: uuid.NewString(), Name: ns.Name, Address: ns.Address, Phone: ns.Phone, Email: ns.Email, IsActive: true}
	b.mu.Lock()
	b.schools = append(b.schools, sch)
	b.mu.Unlock()
	return data(c, http.StatusCreated, sch)
}

func (b *Backend) updateSchool(c echo.Context) error {
	var us school.UpdateSchool
	if err := c.Bind(&us); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.schools {
		if b.schools[i].ID == c.Param("id") {
			if us.Name != "" {
				b.schools[i].Name = us.Name
			}
			if us.Address != "" {
				b.schools[i].Address = us.Address
			}
			if us.Phone != "" {
				b.schools[i].Phone = us.Phone
			}
			if us.Email != "" {
				b.schools[i].Email = us.Email
			}
			return data(c, http.StatusOK, b.schools[i])
		}
	}
	return fail(c, http.StatusNotFound, "school not found")
}

// academic year handlers

func (b *Backend) listYears(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]academicyear.Year, 0)
	for _, y := range b.years {
		if y.SchoolID == c.Param("schoolId") {
			out = append(out, y)
		}
	}
	return data(c, http.StatusOK, out)
}

func (b *Backend) createYear(c echo.Context) error {
	var ny academicyear.NewYear
	if err := c.Bind(&ny); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	y := academicyear.Year{ID: uuid.NewString(), SchoolID: ny.SchoolID, Name: ny.Name, StartDate: ny.StartDate, EndDate: ny.EndDate}
	b.mu.Lock()
	b.years = append(b.years, y)
	b.mu.Unlock()
	return data(c, http.StatusCreated, y)
}

func (b *Backend) activateYear(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var target *academicyear.Year
	for i := range b.years {
		if b.years[i].ID == c.Param("id") {
			target = &b.years[i]
			break
		}
	}
	if target == nil {
		return fail(c, http.StatusNotFound, "academic year not found")
	}
	if target.Archived {
		return fail(c, http.StatusBadRequest, "an archived year cannot be activated")
	}
	for i := range b.years {
		if b.years[i].SchoolID == target.SchoolID {
			b.years[i].IsActive = false
		}
	}
	target.IsActive = true
	return data(c, http.StatusOK, *target)
}

func (b *Backend) archiveYear(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.years {
		if b.years[i].ID == c.Param("id") {
			b.years[i].Archived = true
			b.years[i].IsActive = false
			return data(c, http.StatusOK, b.years[i])
		}
	}
	return fail(c, http.StatusNotFound, "academic year not found")
}

// class & section handlers

func (b *Backend) listClasses(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]class.Class, 0)
	for _, cl := range b.classes {
		if cl.SchoolID == c.Param("schoolId") {
			out = append(out, cl)
		}
	}
	return data(c, http.StatusOK, out)
}

func (b *Backend) createClass(c echo.Context) error {
	var nc class.NewClass
	if err := c.Bind(&nc); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	cl := class.Class{ID: uuid.NewString(), SchoolID: nc.SchoolID, Name: nc.Name}
	b.mu.Lock()
	b.classes = append(b.classes, cl)
	b.mu.Unlock()
	return data(c, http.StatusCreated, cl)
}

func (b *Backend) updateClass(c echo.Context) error {
	var uc class.UpdateClass
	if err := c.Bind(&uc); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.classes {
		if b.classes[i].ID == c.Param("id") {
			if uc.Name != "" {
				b.classes[i].Name = uc.Name
			}
			return data(c, http.StatusOK, b.classes[i])
		}
	}
	return fail(c, http.StatusNotFound, "class not found")
}

func (b *Backend) deleteClass(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.classes {
		if b.classes[i].ID == c.Param("id") {
			b.classes = append(b.classes[:i], b.classes[i+1:]...)
			return data(c, http.StatusOK, nil)
		}
	}
	return fail(c, http.StatusNotFound, "class not found")
}

func (b *Backend) listSections(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return data(c, http.StatusOK, b.sections)
}

func (b *Backend) createSection(c echo.Context) error {
	var ns class.NewSection
	if err := c.Bind(&ns); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	sec := class.Section{ID: uuid.NewString(), Name: ns.Name}
	b.mu.Lock()
	b.sections = append(b.sections, sec)
	b.mu.Unlock()
	return data(c, http.StatusCreated, sec)
}

// subject handlers

func (b *Backend) listSubjects(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]subject.Subject, 0)
	for _, sub := range b.subjects {
		if sub.SchoolID == c.Param("schoolId") {
			out = append(out, sub)
		}
	}
	return data(c, http.StatusOK, out)
}

func (b *Backend) createSubject(c echo.Context) error {
	var ns subject.NewSubject
	if err := c.Bind(&ns); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	sub := subject.Subject{ID: uuid.NewString(), SchoolID: ns.SchoolID, ClassID: ns.ClassID, Name: ns.Name, Code: ns.Code}
	b.mu.Lock()
	b.subjects = append(b.subjects, sub)
	b.mu.Unlock()
	return data(c, http.StatusCreated, sub)
}

func (b *Backend) updateSubject(c echo.Context) error {
	var us subject.UpdateSubject
	if err := c.Bind(&us); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.subjects {
		if b.subjects[i].ID == c.Param("id") {
			if us.Name != "" {
				b.subjects[i].Name = us.Name
			}
			if us.Code != "" {
				b.subjects[i].Code = us.Code
			}
			return data(c, http.StatusOK, b.subjects[i])
		}
	}
	return fail(c, http.StatusNotFound, "subject not found")
}

func (b *Backend) deleteSubject(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.subjects {
		if b.subjects[i].ID == c.Param("id") {
			b.subjects = append(b.subjects[:i], b.subjects[i+1:]...)
			return data(c, http.StatusOK, nil)
		}
	}
	return fail(c, http.StatusNotFound, "subject not found")
}

// fees handlers

func (b *Backend) listFees(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]fees.Fee, 0)
	for _, f := range b.fees {
		if f.SchoolID == c.Param("schoolId") {
			out = append(out, f)
		}
	}
	return data(c, http.StatusOK, out)
}

func (b *Backend) createFee(c echo.Context) error {
	var nf fees.NewFee
	if err := c.Bind(&nf); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	f := fees.Fee{
		ID: uuid.NewString(), SchoolID: nf.SchoolID, StudentID: nf.StudentID,
		FeeHeadID: nf.FeeHeadID, AcademicYearID: nf.AcademicYearID, Amount: nf.Amount, DueDate: nf.DueDate,
	}
	b.mu.Lock()
	b.fees = append(b.fees, f)
	b.mu.Unlock()
	return data(c, http.StatusCreated, f)
}

func (b *Backend) deleteFee(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.fees {
		if b.fees[i].ID == c.Param("id") {
			b.fees = append(b.fees[:i], b.fees[i+1:]...)
			return data(c, http.StatusOK, nil)
		}
	}
	return fail(c, http.StatusNotFound, "fee not found")
}

func (b *Backend) listFeeHeads(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return data(c, http.StatusOK, b.feeHeads)
}

func (b *Backend) createFeeHead(c echo.Context) error {
	var nh fees.NewFeeHead
	if err := c.Bind(&nh); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	h := fees.FeeHead{ID: uuid.NewString(), SchoolID: nh.SchoolID, Name: nh.Name, Amount: nh.Amount}
	b.mu.Lock()
	b.feeHeads = append(b.feeHeads, h)
	b.mu.Unlock()
	return data(c, http.StatusCreated, h)
}

// role handlers

func (b *Backend) listRoles(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return data(c, http.StatusOK, b.roles)
}

func (b *Backend) createRole(c echo.Context) error {
	var nr role.NewRole
	if err := c.Bind(&nr); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	r := role.Role{ID: uuid.NewString(), Name: nr.Name, Value: nr.Value, SchoolID: nr.SchoolID}
	b.mu.Lock()
	b.roles = append(b.roles, r)
	b.mu.Unlock()
	return data(c, http.StatusCreated, r)
}

func (b *Backend) deleteRole(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.roles {
		if b.roles[i].ID == c.Param("id") {
			b.roles = append(b.roles[:i], b.roles[i+1:]...)
			return data(c, http.StatusOK, nil)
		}
	}
	return fail(c, http.StatusNotFound, "role not found")
}

// report handlers

func (b *Backend) enrollmentReport(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	rows := b.enrolled[c.Param("schoolId")]
	if rows == nil {
		rows = make([]report.Enrollment, 0)
	}
	return data(c, http.StatusOK, rows)
}

// feesReport derives the collection summary from the fee records.
func (b *Backend) feesReport(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	summary := report.FeesSummary{SchoolID: c.Param("schoolId")}
	for _, f := range b.fees {
		if f.SchoolID != summary.SchoolID {
			continue
		}
		if f.Paid {
			summary.Collected = summary.Collected.Add(f.Amount)
		} else {
			summary.Outstanding = summary.Outstanding.Add(f.Amount)
		}
	}
	return data(c, http.StatusOK, summary)
}

// activity log handlers

func (b *Backend) listLogs(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	page, limit := pageParams(c)
	start, end := pageBounds(len(b.logs), page, limit)
	return pagedData(c, b.logs[start:end], core.Page{
		Page: page, Limit: limit, Total: len(b.logs), Pages: pages(len(b.logs), limit),
	})
}

func (b *Backend) createLog(c echo.Context) error {
	var nl activitylog.NewLog
	if err := c.Bind(&nl); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	l := activitylog.Log{
		ID: uuid.NewString(), UserID: c.Get("userID").(string),
		Action: nl.Action, Entity: nl.Entity, TargetID: nl.TargetID, Detail: nl.Detail,
		CreatedAt: time.Now().UTC(),
	}
	b.mu.Lock()
	b.logs = append(b.logs, l)
	b.mu.Unlock()
	return data(c, http.StatusCreated, l)
}

func (b *Backend) deleteLog(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.logs {
		if b.logs[i].ID == c.Param("id") {
			b.logs = append(b.logs[:i], b.logs[i+1:]...)
			return data(c, http.StatusOK, nil)
		}
	}
	return fail(c, http.StatusNotFound, "activity log not found")
}

// pagination helpers

func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

func pageBounds(total, page, limit int) (start, end int) {
	start = (page - 1) * limit
	if start > total {
		start = total
	}
	end = start + limit
	if end > total {
		end = total
	}
	return start, end
}

func pages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
