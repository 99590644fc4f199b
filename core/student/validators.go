package student

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/legacybuilder/backend/core"
)

var (
	subjectTag  = "subject"
	subjectText = "unknown subject"

	planTag  = "plan"
	planText = "invalid plan"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to account attributes"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"
	commonPasswords = []string{
		"000000", "111111", "123123", "123321", "1234567", "12345678", "123456789",
		"1234567890", "654321", "666666", "abc123", "admin", "baseball", "basketball",
		"charlie", "dragon", "football", "iloveyou", "letmein", "master", "michael",
		"monkey", "mypass", "password", "password1", "password123", "princess",
		"qwerty", "qwerty123", "shadow", "soccer", "sunshine", "superman", "welcome",
	}
)

// RegisterValidators registers this package's custom validators;
// to be called once at app startup.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	sort.Strings(commonPasswords)

	_ = validate.RegisterValidation(subjectTag, subjectValidation)
	core.RegisterCustomTranslation(validate, translator, subjectTag, subjectText)

	_ = validate.RegisterValidation(planTag, planValidation)
	core.RegisterCustomTranslation(validate, translator, planTag, planText)

	validate.RegisterStructValidation(studentStructValidation, NewStudent{})
	validate.RegisterStructValidation(studentStructValidation, UpdateStudent{})
	validate.RegisterStructValidation(studentStructValidation, ResetStudentPassword{})
	validate.RegisterStructValidation(studentStructValidation, ChangeStudentPassword{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
	core.RegisterCustomTranslation(validate, translator, pwdNoCommonTag, pwdNoCommonText)
}

// Custom Validators

// subjectValidation checks that the provided subject is in AllSubjects
func subjectValidation(fl validator.FieldLevel) bool {
	return IsSubject(fl.Field().String())
}

// planValidation checks that the provided plan is in AllPlans
func planValidation(fl validator.FieldLevel) bool {
	plan := fl.Field().String()
	for _, p := range AllPlans {
		if plan == p {
			return true
		}
	}
	return false
}

// studentStructValidation does struct level validation on password-carrying structs.
func studentStructValidation(sl validator.StructLevel) {
	switch std := sl.Current().Interface().(type) {
	case NewStudent:
		validatePassword(std.Password, std.Name, std.Email, sl)
	case UpdateStudent:
		if std.Password != "" {
			validatePassword(std.Password, std.Name, std.Email, sl)
		}
	case ResetStudentPassword:
		validatePassword(std.Password, "", "", sl)
	case ChangeStudentPassword:
		validatePassword(std.Password, "", "", sl)
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no account attrs similarity
// - no common password
func validatePassword(pwd, name, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount                             int
		hasUpper, hasLower, hasDig, hasSpecial bool
	)

	// - minLen: 8
	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range []rune(pwd) {
		// - no whitespace
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	// - not all numeric
	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	// - complexity: 1 upper, 1 lower, 1 digit & 1 special
	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		reportErr(pwdComplexityTag)
		return
	}

	// - no account attrs similarity
	getRatio := func(pass, attr string) float64 {
		if attr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
	}
	if getRatio(pwd, name) >= pwdMaxSim || getRatio(pwd, email) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
		return
	}

	// - no common passwords
	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) {
		if match := commonPasswords[idx]; lpwd == match {
			reportErr(pwdNoCommonTag)
			return
		}
	}
}
