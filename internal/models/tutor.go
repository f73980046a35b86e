package models

// TimeSlot is one entry of a tutor's published availability.
type TimeSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

// Tutor is the public profile of a Tutor-role user.
type Tutor struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	Name              string     `json:"name"`
	Avatar            string     `json:"avatar,omitempty"`
	Subject           string     `json:"subject"`
	Expertise         []string   `json:"expertise"`
	Rating            float64    `json:"rating"`
	Reviews           int        `json:"reviews"`
	HourlyRate        float64    `json:"hourlyRate"`
	YearsOfExperience int        `json:"yearsOfExperience"`
	Bio               string     `json:"bio,omitempty"`
	AvailableSlots    []TimeSlot `json:"availableSlots"`
}

// Subject is derived from the tutor roster.
type Subject struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TutorCount int    `json:"tutorCount"`
}
