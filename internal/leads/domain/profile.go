package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LeadKind selects the profile variant stored in a lead's custom fields
// under the "leadType" key.
type LeadKind string

const (
	KindGeneral   LeadKind = "general"
	KindEducation LeadKind = "education"
	KindCPD       LeadKind = "cpd_partnership"
)

// Custom-field keys.
const (
	FieldLeadType             = "leadType"
	FieldLinkedIn             = "linkedinUrl"
	FieldSalonAffiliation     = "salonAffiliation"
	FieldInstitution          = "institution"
	FieldJobTitle             = "jobTitle"
	FieldStudentNumbers       = "studentNumbers"
	FieldCurrentQualification = "currentQualification"
	FieldPreferredStart       = "preferredStart"
)

// Affiliation holds the professional links any kind of lead may carry.
type Affiliation struct {
	LinkedInURL      string
	SalonAffiliation string
}

// Profile is the kind-specific part of a lead. Scoring switches on the
// concrete type.
type Profile interface {
	Kind() LeadKind
	Affiliations() Affiliation
	// Extra returns custom fields that no variant models.
	Extra() map[string]any
}

// GeneralProfile is an individual client enquiry.
type GeneralProfile struct {
	Affiliation
	Other map[string]any
}

// EducationProfile is a prospective student enquiring about a course.
type EducationProfile struct {
	Affiliation
	CurrentQualification string
	PreferredStart       string
	Other                map[string]any
}

// CPDProfile is a college or training body enquiring about a partnership.
type CPDProfile struct {
	Affiliation
	Institution    string
	JobTitle       string
	StudentNumbers int
	Other          map[string]any
}

func (GeneralProfile) Kind() LeadKind              { return KindGeneral }
func (p GeneralProfile) Affiliations() Affiliation { return p.Affiliation }
func (p GeneralProfile) Extra() map[string]any     { return p.Other }

func (EducationProfile) Kind() LeadKind              { return KindEducation }
func (p EducationProfile) Affiliations() Affiliation { return p.Affiliation }
func (p EducationProfile) Extra() map[string]any     { return p.Other }

func (CPDProfile) Kind() LeadKind              { return KindCPD }
func (p CPDProfile) Affiliations() Affiliation { return p.Affiliation }
func (p CPDProfile) Extra() map[string]any     { return p.Other }

// DecodeProfile builds the profile variant named by fields["leadType"].
// Missing or unknown kinds decode as GeneralProfile.
func DecodeProfile(fields map[string]any) Profile {
	rest := make(map[string]any, len(fields))
	for k, v := range fields {
		rest[k] = v
	}
	kind := LeadKind(strings.TrimSpace(takeString(rest, FieldLeadType)))
	aff := Affiliation{
		LinkedInURL:      takeString(rest, FieldLinkedIn),
		SalonAffiliation: takeString(rest, FieldSalonAffiliation),
	}

	switch kind {
	case KindCPD:
		return CPDProfile{
			Affiliation:    aff,
			Institution:    takeString(rest, FieldInstitution),
			JobTitle:       takeString(rest, FieldJobTitle),
			StudentNumbers: takeInt(rest, FieldStudentNumbers),
			Other:          rest,
		}
	case KindEducation:
		return EducationProfile{
			Affiliation:          aff,
			CurrentQualification: takeString(rest, FieldCurrentQualification),
			PreferredStart:       takeString(rest, FieldPreferredStart),
			Other:                rest,
		}
	default:
		return GeneralProfile{Affiliation: aff, Other: rest}
	}
}

// EncodeProfile flattens p back into the custom-fields map.
func EncodeProfile(p Profile) map[string]any {
	if p == nil {
		p = GeneralProfile{}
	}
	out := make(map[string]any, len(p.Extra())+8)
	for k, v := range p.Extra() {
		out[k] = v
	}
	out[FieldLeadType] = string(p.Kind())
	aff := p.Affiliations()
	putString(out, FieldLinkedIn, aff.LinkedInURL)
	putString(out, FieldSalonAffiliation, aff.SalonAffiliation)

	switch v := p.(type) {
	case CPDProfile:
		putString(out, FieldInstitution, v.Institution)
		putString(out, FieldJobTitle, v.JobTitle)
		if v.StudentNumbers > 0 {
			out[FieldStudentNumbers] = v.StudentNumbers
		}
	case EducationProfile:
		putString(out, FieldCurrentQualification, v.CurrentQualification)
		putString(out, FieldPreferredStart, v.PreferredStart)
	}
	return out
}

// UnmarshalProfile decodes the stored custom-fields JSON.
func UnmarshalProfile(raw []byte) (Profile, error) {
	fields := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}
	return DecodeProfile(fields), nil
}

// MarshalProfile encodes p as custom-fields JSON.
func MarshalProfile(p Profile) ([]byte, error) {
	return json.Marshal(EncodeProfile(p))
}

func takeString(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	delete(fields, key)
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// takeInt accepts JSON numbers and numeric strings such as "120".
func takeInt(fields map[string]any, key string) int {
	v, ok := fields[key]
	if !ok {
		return 0
	}
	delete(fields, key)
	switch n := v.(type) {
	case float64:
		return int(math.Round(n))
	case int:
		return n
	case json.Number:
		f, _ := n.Float64()
		return int(math.Round(f))
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	default:
		return 0
	}
}

func putString(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
