package person

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"person-registry/internal/domain"
)

func TestForm_ValidPasses(t *testing.T) {
	f := validForm("  Anong ")
	require.NoError(t, f.Validate())
	assert.Equal(t, "Anong", f.FirstName)
}

func TestForm_ThaiNamesAccepted(t *testing.T) {
	f := validForm("สมชาย")
	f.LastName = "ใจดี"
	assert.NoError(t, f.Validate())
}

func TestForm_FieldErrors(t *testing.T) {
	neg := decimal.NewFromInt(-1)
	cases := []struct {
		name  string
		edit  func(*Form)
		field string
	}{
		{"missing title", func(f *Form) { f.Title = "" }, "title"},
		{"unknown title", func(f *Form) { f.Title = "Dr" }, "title"},
		{"short firstname", func(f *Form) { f.FirstName = "A" }, "firstname"},
		{"digits in lastname", func(f *Form) { f.LastName = "W0ngsa" }, "lastname"},
		{"bad birthday", func(f *Form) { f.Birthday = "17/05/1988" }, "birthday"},
		{"missing nationality", func(f *Form) { f.Nationality = " " }, "nationality"},
		{"missing citizen part1", func(f *Form) { f.CitizenID1 = "" }, "citizenId1"},
		{"short citizen part3", func(f *Form) { f.CitizenID3 = "123" }, "citizenId3"},
		{"letters in citizen part2", func(f *Form) { f.CitizenID2 = "12a4" }, "citizenId2"},
		{"bad gender", func(f *Form) { f.Gender = "other" }, "gender"},
		{"missing country code", func(f *Form) { f.CountryCode = "" }, "countryCode"},
		{"short phone", func(f *Form) { f.MobilePhone = "0812" }, "mobilePhone"},
		{"phone with letters", func(f *Form) { f.MobilePhone = "08123x5678" }, "mobilePhone"},
		{"lowercase passport", func(f *Form) { f.PassportNo = "ab12345" }, "passportNo"},
		{"missing salary", func(f *Form) { f.ExpectedSalary = nil }, "expectedSalary"},
		{"negative salary", func(f *Form) { f.ExpectedSalary = &neg }, "expectedSalary"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := validForm("Anong")
			c.edit(&f)
			err := f.Validate()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, c.field)
		})
	}
}

func TestForm_OptionalCitizenPartsMayBeEmpty(t *testing.T) {
	f := validForm("Anong")
	f.CitizenID2, f.CitizenID3, f.CitizenID4, f.CitizenID5 = "", "", "", ""
	assert.NoError(t, f.Validate())
}

func TestForm_ValidationErrorMessageIsStable(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": "is required", "birthday": "is required"}}
	assert.Equal(t, "validation failed: birthday is required; title is required", err.Error())
}

func TestForm_PersonAndBack(t *testing.T) {
	f := validForm("Anong")
	f.PassportNo = "AA1234567"
	p := f.Person()

	assert.Empty(t, p.ID)
	assert.Equal(t, "Mrs Anong Wongsa", p.Name)
	assert.Equal(t, "1-1037-02071-81-1", p.CitizenID.String())
	assert.True(t, decimal.NewFromInt(45000).Equal(p.ExpectedSalary))

	back := FormFrom(p)
	assert.Equal(t, f.FirstName, back.FirstName)
	assert.Equal(t, f.CitizenID3, back.CitizenID3)
	assert.Equal(t, f.PassportNo, back.PassportNo)
	require.NotNil(t, back.ExpectedSalary)
	assert.True(t, f.ExpectedSalary.Equal(*back.ExpectedSalary))
}

func TestForm_PatchOverwritesEverything(t *testing.T) {
	orig := withID(samplePerson("Somchai", "Jaidee"), "42")
	f := validForm("Anong")
	got := f.Patch().Apply(orig)

	assert.Equal(t, "42", got.ID)
	assert.Equal(t, domain.TitleMrs, got.Title)
	assert.Equal(t, domain.GenderFemale, got.Gender)
	assert.Equal(t, "Mrs Anong Wongsa", got.Name)
	assert.Equal(t, "+660812345678", got.Phone)
}
