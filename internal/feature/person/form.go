package person

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"person-registry/internal/domain"
)

// Form 表单原始输入（未校验）
type Form struct {
	Title          domain.Title     `json:"title"          validate:"required,oneof=Mr Mrs Miss"`
	FirstName      string           `json:"firstname"      validate:"required,min=2,personname"`
	LastName       string           `json:"lastname"       validate:"required,min=2,personname"`
	Birthday       string           `json:"birthday"       validate:"required,isodate"`
	Nationality    string           `json:"nationality"    validate:"required"`
	CitizenID1     string           `json:"citizenId1"     validate:"required,digits,len=1"`
	CitizenID2     string           `json:"citizenId2"     validate:"omitempty,digits,len=4"`
	CitizenID3     string           `json:"citizenId3"     validate:"omitempty,digits,len=5"`
	CitizenID4     string           `json:"citizenId4"     validate:"omitempty,digits,len=2"`
	CitizenID5     string           `json:"citizenId5"     validate:"omitempty,digits,len=1"`
	Gender         domain.Gender    `json:"gender"         validate:"required,oneof=male female unsex"`
	CountryCode    string           `json:"countryCode"    validate:"required"`
	MobilePhone    string           `json:"mobilePhone"    validate:"required,digits,min=9,max=10"`
	PassportNo     string           `json:"passportNo"     validate:"omitempty,passport"`
	ExpectedSalary *decimal.Decimal `json:"expectedSalary" validate:"required"`
}

var (
	reDigits     = regexp.MustCompile(`^[0-9]+$`)
	rePersonName = regexp.MustCompile(`^[ก-๙a-zA-Z\s]+$`)
	rePassport   = regexp.MustCompile(`^[A-Z0-9]{6,9}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "digits", func(fl validator.FieldLevel) bool { return reDigits.MatchString(fl.Field().String()) })
	mustRegister(v, "personname", func(fl validator.FieldLevel) bool { return rePersonName.MatchString(fl.Field().String()) })
	mustRegister(v, "passport", func(fl validator.FieldLevel) bool { return rePassport.MatchString(fl.Field().String()) })
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool { return isISODate(fl.Field().String()) })
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func isISODate(s string) bool {
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// ValidationError 字段 → 提示
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (f *Form) normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Nationality = strings.TrimSpace(f.Nationality)
	f.MobilePhone = strings.TrimSpace(f.MobilePhone)
	f.PassportNo = strings.TrimSpace(f.PassportNo)
}

// Validate 返回 *ValidationError 或 nil
func (f *Form) Validate() error {
	f.normalize()
	fields := map[string]string{}
	if err := validate.Struct(f); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return err
		}
		for _, fe := range errs {
			fields[fe.Field()] = validationMessage(fe)
		}
	}
	if f.ExpectedSalary != nil && f.ExpectedSalary.IsNegative() {
		fields["expectedSalary"] = "must be at least 0"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s digits", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "digits":
		return "must contain digits only"
	case "personname":
		return "must contain letters only"
	case "passport":
		return "must be 6-9 uppercase letters or digits"
	case "isodate":
		return "must be an ISO date"
	}
	return "is invalid"
}

func (f *Form) citizenID() domain.CitizenID {
	return domain.CitizenID{
		Part1: f.CitizenID1, Part2: f.CitizenID2, Part3: f.CitizenID3,
		Part4: f.CitizenID4, Part5: f.CitizenID5,
	}
}

func (f *Form) salary() decimal.Decimal {
	if f.ExpectedSalary == nil {
		return decimal.Zero
	}
	return *f.ExpectedSalary
}

// Person 新建用（ID 由 Store 分配）
func (f *Form) Person() domain.Person {
	return domain.Person{
		Title:          f.Title,
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		Gender:         f.Gender,
		Birthday:       f.Birthday,
		Nationality:    f.Nationality,
		CitizenID:      f.citizenID(),
		CountryCode:    f.CountryCode,
		MobilePhone:    f.MobilePhone,
		PassportNo:     f.PassportNo,
		ExpectedSalary: f.salary(),
	}.WithDerived()
}

// Patch 编辑提交：表单里的所有字段都覆盖
func (f *Form) Patch() domain.PersonPatch {
	cid := f.citizenID()
	sal := f.salary()
	return domain.PersonPatch{
		Title:          &f.Title,
		FirstName:      &f.FirstName,
		LastName:       &f.LastName,
		Gender:         &f.Gender,
		Birthday:       &f.Birthday,
		Nationality:    &f.Nationality,
		CitizenID:      &cid,
		CountryCode:    &f.CountryCode,
		MobilePhone:    &f.MobilePhone,
		PassportNo:     &f.PassportNo,
		ExpectedSalary: &sal,
	}
}

// FormFrom 编辑态回填表单
func FormFrom(p domain.Person) Form {
	sal := p.ExpectedSalary
	return Form{
		Title:          p.Title,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Birthday:       p.Birthday,
		Nationality:    p.Nationality,
		CitizenID1:     p.Part1,
		CitizenID2:     p.Part2,
		CitizenID3:     p.Part3,
		CitizenID4:     p.Part4,
		CitizenID5:     p.Part5,
		Gender:         p.Gender,
		CountryCode:    p.CountryCode,
		MobilePhone:    p.MobilePhone,
		PassportNo:     p.PassportNo,
		ExpectedSalary: &sal,
	}
}
