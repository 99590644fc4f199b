package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/legacybuilder/backend/core"
)

// Plans
const (
	PlanFreemium = "Freemium"
	PlanPremium  = "Premium"
	PlanLifetime = "Lifetime Access"
)

var (
	AllPlans = []string{PlanFreemium, PlanPremium, PlanLifetime}

	// AllSubjects is the list of subjects a student may enroll in.
	AllSubjects = []string{
		"English",
		"Mathematics",
		"Physics",
		"Chemistry",
		"Biology",
		"Literature in English",
		"Economics",
		"Geography",
		"Government",
		"History",
	}

	// DefaultSubjects is assigned at registration when no subjects are picked.
	DefaultSubjects = []string{"Mathematics", "English"}
)

// NormalizePlan falls back to Freemium for unknown plans.
func NormalizePlan(plan string) string {
	for _, p := range AllPlans {
		if plan == p {
			return p
		}
	}
	return PlanFreemium
}

// IsSubject reports whether subject is in AllSubjects.
func IsSubject(subject string) bool {
	for _, s := range AllSubjects {
		if subject == s {
			return true
		}
	}
	return false
}

type Student struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Plan         string    `json:"plan"`
	Subjects     []string  `json:"subjects"`
	IsVerified   bool      `json:"is_verified"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

func (s *Student) HasSubject(subject string) bool {
	for _, sub := range s.Subjects {
		if sub == subject {
			return true
		}
	}
	return false
}

func (s *Student) IsPremium() bool {
	return s.Plan == PlanPremium || s.Plan == PlanLifetime
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name            string   `json:"name" validate:"required,alphanumspace"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Subjects        []string `json:"subjects" validate:"omitempty,dive,subject"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ns.Email)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name            string   `json:"name" validate:"omitempty,alphanumspace"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Plan            string   `json:"plan" validate:"omitempty,plan"`
	Subjects        []string `json:"subjects" validate:"omitempty,dive,subject"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate, svc Service) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	email := core.CleanString(us.Email, true /* lower */)
	if email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckUniqueness(us.Email, orig)
}

type VerifyStudentEmail struct {
	UID   string `json:"uid,omitempty" query:"uid" validate:"required"`
	Token string `json:"token,omitempty" query:"token" validate:"required"`
}

func (ve VerifyStudentEmail) Validate(validate *validator.Validate) error {
	return validate.Struct(ve)
}

type ResetStudentPassword struct {
	UID             string `json:"uid,omitempty" validate:"required"`
	Token           string `json:"token,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetStudentPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type ChangeStudentPassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (cp ChangeStudentPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

// GetFilter finds a single Student by one of its unique fields.
type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Plan        string    `query:"plan"`
	Subject     string    `query:"subject"`
	IsVerified  *bool     `query:"is_verified"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Plan == "" && qf.Subject == "" && qf.IsVerified == nil &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Plan = core.CleanString(qf.Plan)
	qf.Subject = core.CleanString(qf.Subject)
}
