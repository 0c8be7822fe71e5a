package scoring

import (
	"math"
	"strings"
	"time"

	"salon_booking_backend/internal/leads/domain"
)

const (
	maxBehavioral = 40.0
	maxEngagement = 40.0
	maxProfile    = 20.0

	// Each sub-score is already on its cap's scale, so every weight is 1.
	behavioralWeight = maxBehavioral / 40.0
	engagementWeight = maxEngagement / 40.0
	profileWeight    = maxProfile / 20.0

	returnVisitBonus = 3.0
	recencyBonus     = 5.0
	recencyWindow    = 7 * 24 * time.Hour

	openRateBonus     = 5.0
	highOpenRateBonus = 8.0
)

// activityPoints is the fixed score impact per activity type. Page visits
// are priced by pageVisitPoints instead.
var activityPoints = map[domain.ActivityType]float64{
	domain.ActivityFormSubmit:       10,
	domain.ActivityBookingAttempted: 8,
	domain.ActivityBookingCompleted: 15,
	domain.ActivityChatStarted:      5,
	domain.ActivityChatMessage:      2,
	domain.ActivityContentViewed:    2,
	domain.ActivityContentEngaged:   4,
	domain.ActivityEmailOpened:      2,
	domain.ActivityEmailClicked:     5,
	domain.ActivityEmailReplied:     10,
	domain.ActivitySMSReplied:       8,
}

var engagementTypes = map[domain.ActivityType]struct{}{
	domain.ActivityEmailOpened:  {},
	domain.ActivityEmailClicked: {},
	domain.ActivityEmailReplied: {},
	domain.ActivitySMSReplied:   {},
}

var freeEmailDomains = map[string]struct{}{
	"gmail.com":      {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"aol.com":        {},
	"icloud.com":     {},
	"protonmail.com": {},
	"mail.com":       {},
}

var decisionMakerKeywords = []string{
	"director", "head of", "dean", "principal", "vice principal",
	"coordinator", "manager", "lead", "chief", "senior",
}

// genericCourseInterest is the wizard's catch-all option.
const genericCourseInterest = "all courses"

// ActivityImpact returns the points a single activity contributes before
// caps and bonuses. Unknown types score 0.
func ActivityImpact(a domain.Activity) int {
	if a.Type == domain.ActivityPageVisit {
		return int(pageVisitPoints(a.PayloadString("page")))
	}
	return int(activityPoints[a.Type])
}

func pageVisitPoints(page string) float64 {
	page = strings.ToLower(page)
	switch {
	case strings.Contains(page, "pricing"), strings.Contains(page, "book"):
		return 5
	case strings.Contains(page, "service"), strings.Contains(page, "course"):
		return 3
	default:
		return 1
	}
}

// CalculateScore derives the lead score from the profile and the full
// activity log. No activities and an empty profile give zero.
func CalculateScore(lead domain.Lead, activities []domain.Activity, now time.Time) domain.ScoreBreakdown {
	behavioral := clampFloat(behavioralScore(activities, now), 0, maxBehavioral)
	engagement := clampFloat(engagementScore(activities), 0, maxEngagement)
	profile := clampFloat(profileScore(lead), 0, maxProfile)

	total := behavioral*behavioralWeight + engagement*engagementWeight + profile*profileWeight

	return domain.ScoreBreakdown{
		Total:      clampScore(total),
		Behavioral: int(math.Round(behavioral)),
		Engagement: int(math.Round(engagement)),
		Profile:    int(math.Round(profile)),
	}
}

func behavioralScore(activities []domain.Activity, now time.Time) float64 {
	if len(activities) == 0 {
		return 0
	}

	score := 0.0
	days := make(map[string]struct{})
	recent := false
	for _, a := range activities {
		days[a.OccurredAt.UTC().Format(time.DateOnly)] = struct{}{}
		if now.Sub(a.OccurredAt) <= recencyWindow {
			recent = true
		}
		if _, ok := engagementTypes[a.Type]; ok {
			continue
		}
		score += float64(ActivityImpact(a))
	}

	score += returnVisitBonus * float64(len(days)-1)
	if recent {
		score += recencyBonus
	}
	return score
}

func engagementScore(activities []domain.Activity) float64 {
	score := 0.0
	sent, opened := 0, 0
	for _, a := range activities {
		switch a.Type {
		case domain.ActivityEmailSent:
			sent++
		case domain.ActivityEmailOpened:
			opened++
		}
		if _, ok := engagementTypes[a.Type]; ok {
			score += activityPoints[a.Type]
		}
	}

	if sent > 0 {
		rate := float64(opened) / float64(sent)
		if rate > 0.5 {
			score += openRateBonus
		}
		if rate > 0.7 {
			score += highOpenRateBonus
		}
	}
	return score
}

func profileScore(lead domain.Lead) float64 {
	score := 0.0
	if strings.TrimSpace(lead.FirstName) != "" && strings.TrimSpace(lead.LastName) != "" {
		score += 3
	}
	if strings.TrimSpace(lead.Phone) != "" {
		score += 3
	}
	emailDomain := lead.EmailDomain()
	if emailDomain != "" {
		if _, free := freeEmailDomains[emailDomain]; !free {
			score += 4
		}
	}

	if lead.Profile == nil {
		return score
	}
	aff := lead.Profile.Affiliations()
	if aff.LinkedInURL != "" {
		score += 3
	}
	if aff.SalonAffiliation != "" {
		score += 4
	}

	if cpd, ok := lead.Profile.(domain.CPDProfile); ok {
		score += cpdScore(cpd, emailDomain, lead.CourseInterest)
	}
	return score
}

func cpdScore(p domain.CPDProfile, emailDomain, courseInterest string) float64 {
	score := 0.0
	if p.Institution != "" {
		score += 5
	}
	if containsAny(strings.ToLower(p.JobTitle), decisionMakerKeywords) {
		score += 10
	}
	switch {
	case p.StudentNumbers >= 100:
		score += 10
	case p.StudentNumbers >= 50:
		score += 5
	}
	if isEducationDomain(emailDomain) {
		score += 5
	}
	if isSpecificCourse(courseInterest) {
		score += 8
	}
	return score
}

func isEducationDomain(domainName string) bool {
	if domainName == "" {
		return false
	}
	for _, suffix := range []string{".ac.uk", ".edu", ".edu.au"} {
		if strings.HasSuffix(domainName, suffix) {
			return true
		}
	}
	return strings.Contains(domainName, "college") || strings.Contains(domainName, "university")
}

func isSpecificCourse(interest string) bool {
	interest = strings.ToLower(strings.TrimSpace(interest))
	return interest != "" && interest != genericCourseInterest
}

// containsAny checks if s contains any of the keywords.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// RecommendNextAction suggests the follow-up for a lead given its score.
func RecommendNextAction(lead domain.Lead, b domain.ScoreBreakdown) string {
	switch lead.Stage {
	case domain.StageConverted:
		return "Hand over to the salon team for onboarding"
	case domain.StageLost:
		return "Add to the quarterly win-back campaign"
	}

	isCPD := lead.Kind() == domain.KindCPD
	switch domain.TemperatureFor(b.Total) {
	case domain.TemperatureHot:
		if isCPD {
			return "Arrange a partnership call with the institution this week"
		}
		if strings.TrimSpace(lead.Phone) == "" {
			return "Email a personal invitation to book a consultation"
		}
		return "Call within 24 hours to book a consultation"
	case domain.TemperatureWarm:
		if isCPD {
			return "Send the CPD partnership pack and follow up in a week"
		}
		if b.Engagement < 10 {
			return "Send the course guide and follow up by email"
		}
		return "Offer a taster session or consultation slot"
	default:
		if b.Profile < 10 {
			return "Invite them to complete their profile via the enquiry form"
		}
		return "Add to the monthly newsletter nurture sequence"
	}
}

func clampScore(value float64) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func clampFloat(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
