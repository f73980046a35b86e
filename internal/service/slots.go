package service

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/noah-isme/tutor-booking-api/internal/models"
)

const (
	dateLayout          = "2006-01-02"
	alternativeSlotDays = 7
	maxAlternativeSlots = 10
)

type slotTemplate struct {
	start string
	end   string
}

// Hourly templates from 09:00 to 17:00 with a lunch break at noon.
var slotTemplates = []slotTemplate{
	{"09:00", "10:00"},
	{"10:00", "11:00"},
	{"11:00", "12:00"},
	{"13:00", "14:00"},
	{"14:00", "15:00"},
	{"15:00", "16:00"},
	{"16:00", "17:00"},
}

// SlotAvailability decides whether an otherwise free candidate slot is offered.
type SlotAvailability interface {
	Available(date, startTime string) bool
}

// RandomAvailability offers each free slot with a fixed probability. It stands
// in for real tutor calendars.
type RandomAvailability struct {
	mu    sync.Mutex
	rng   *rand.Rand
	ratio float64
}

// NewRandomAvailability seeds the source; seed 0 uses the clock.
func NewRandomAvailability(ratio float64, seed int64) *RandomAvailability {
	if ratio < 0 || ratio > 1 {
		ratio = 0.7
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomAvailability{rng: rand.New(rand.NewSource(seed)), ratio: ratio}
}

// Available implements SlotAvailability.
func (a *RandomAvailability) Available(date, startTime string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64() < a.ratio
}

// AlwaysAvailable offers every slot that is not already booked.
type AlwaysAvailable struct{}

// Available implements SlotAvailability.
func (AlwaysAvailable) Available(date, startTime string) bool { return true }

// alternativeSlots lists weekday candidates for the days after today, marking
// slots the tutor already holds as unavailable.
func alternativeSlots(today time.Time, taken map[string]struct{}, policy SlotAvailability) []models.AlternativeSlot {
	slots := make([]models.AlternativeSlot, 0, maxAlternativeSlots)
	for offset := 1; offset <= alternativeSlotDays; offset++ {
		day := today.AddDate(0, 0, offset)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		date := day.Format(dateLayout)
		for idx, tpl := range slotTemplates {
			if len(slots) == maxAlternativeSlots {
				return slots
			}
			_, booked := taken[date+" "+tpl.start]
			slots = append(slots, models.AlternativeSlot{
				ID:        fmt.Sprintf("slot_%s_%d", date, idx),
				Date:      date,
				Day:       day.Weekday().String()[:3],
				StartTime: tpl.start,
				EndTime:   tpl.end,
				Available: !booked && policy.Available(date, tpl.start),
			})
		}
	}
	return slots
}
