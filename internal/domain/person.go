package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// 旧数据里 expectedSalary 是 JSON 数字，写回时保持同样的形状
	decimal.MarshalJSONWithoutQuotes = true
}

type Title string

const (
	TitleMr   Title = "Mr"
	TitleMrs  Title = "Mrs"
	TitleMiss Title = "Miss"
)

// 旧数据里的泰文称谓
var legacyTitles = map[string]Title{
	"นาย":    TitleMr,
	"นาง":    TitleMrs,
	"นางสาว": TitleMiss,
}

func (t *Title) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if v, ok := legacyTitles[strings.TrimSpace(s)]; ok {
		*t = v
		return nil
	}
	*t = Title(s)
	return nil
}

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderUnspecified Gender = "unsex"
)

// CitizenID 五段定长数字：1+4+5+2+1
type CitizenID struct {
	Part1 string `json:"citizenId1"`
	Part2 string `json:"citizenId2"`
	Part3 string `json:"citizenId3"`
	Part4 string `json:"citizenId4"`
	Part5 string `json:"citizenId5"`
}

// String 拼接为 x-xxxx-xxxxx-xx-x；全空返回 ""
func (c CitizenID) String() string {
	parts := []string{c.Part1, c.Part2, c.Part3, c.Part4, c.Part5}
	if strings.Join(parts, "") == "" {
		return ""
	}
	return strings.Join(parts, "-")
}

type Person struct {
	ID          string `json:"id"`
	Title       Title  `json:"title"`
	Name        string `json:"name"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Gender      Gender `json:"gender"`
	Birthday    string `json:"birthday"`
	Nationality string `json:"nationality"`
	CitizenID
	CountryCode    string          `json:"countryCode"`
	MobilePhone    string          `json:"mobilePhone"`
	Phone          string          `json:"phone"`
	PassportNo     string          `json:"passportNo,omitempty"`
	ExpectedSalary decimal.Decimal `json:"expectedSalary"`
}

// FullName 排序用的 "firstname lastname"
func (p Person) FullName() string { return p.FirstName + " " + p.LastName }

// WithDerived 重算冗余字段 name / phone
func (p Person) WithDerived() Person {
	p.Name = strings.TrimSpace(string(p.Title) + " " + p.FirstName + " " + p.LastName)
	p.Phone = p.CountryCode + p.MobilePhone
	return p
}

// PersonPatch nil 字段表示不修改；ID 不在其中
type PersonPatch struct {
	Title          *Title
	FirstName      *string
	LastName       *string
	Gender         *Gender
	Birthday       *string
	Nationality    *string
	CitizenID      *CitizenID
	CountryCode    *string
	MobilePhone    *string
	PassportNo     *string
	ExpectedSalary *decimal.Decimal
}

// Apply 把 patch 合并到 p 上（保持 ID）
func (pt PersonPatch) Apply(p Person) Person {
	if pt.Title != nil {
		p.Title = *pt.Title
	}
	if pt.FirstName != nil {
		p.FirstName = *pt.FirstName
	}
	if pt.LastName != nil {
		p.LastName = *pt.LastName
	}
	if pt.Gender != nil {
		p.Gender = *pt.Gender
	}
	if pt.Birthday != nil {
		p.Birthday = *pt.Birthday
	}
	if pt.Nationality != nil {
		p.Nationality = *pt.Nationality
	}
	if pt.CitizenID != nil {
		p.CitizenID = *pt.CitizenID
	}
	if pt.CountryCode != nil {
		p.CountryCode = *pt.CountryCode
	}
	if pt.MobilePhone != nil {
		p.MobilePhone = *pt.MobilePhone
	}
	if pt.PassportNo != nil {
		p.PassportNo = *pt.PassportNo
	}
	if pt.ExpectedSalary != nil {
		p.ExpectedSalary = *pt.ExpectedSalary
	}
	return p.WithDerived()
}
