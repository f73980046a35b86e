package repository

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSequentialID(t *testing.T) {
	assert.Equal(t, "cls_001", NextSequentialID(PrefixClass, nil))
	assert.Equal(t, "bkg_004", NextSequentialID(PrefixBooking, []string{"bkg_001", "bkg_003", "other_999", "bkg_x"}))
	assert.Equal(t, "enr_1000", NextSequentialID(PrefixEnrollment, []string{"enr_999"}))
}

func TestShortID(t *testing.T) {
	id := ShortID(PrefixNotification)
	assert.Regexp(t, regexp.MustCompile(`^ntf_[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, ShortID(PrefixNotification))
}
