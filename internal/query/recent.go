package query

import (
	"sort"
	"strings"
	"time"

	"github.com/aidanlsb/labnotes/internal/dates"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// DefaultRecentDays is the window used when none is given.
const DefaultRecentDays = 7

// Recent returns every titled entity whose updated timestamp is strictly
// after now minus days, newest first. Entities with a missing or unparseable
// updated field are left out.
func Recent(v *vault.Vault, days int, now time.Time) (*Result, error) {
	if days < 0 {
		return nil, &model.ValidationError{Field: "days", Reason: "days must not be negative"}
	}
	cutoff := Cutoff(days, now)

	res := &Result{}
	err := v.Walk(model.ScopeAll, func(e *vault.Entity) error {
		if strings.TrimSpace(e.Meta.String("title")) == "" {
			return nil
		}
		updated, err := dates.ParseTimestamp(e.Meta.String("updated"))
		if err != nil {
			return nil
		}
		if updated.After(cutoff) {
			res.add(Match{Entity: e, Updated: updated})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(res.Matches, func(i, j int) bool {
		return res.Matches[i].Updated.After(res.Matches[j].Updated)
	})
	return res, nil
}

// Cutoff returns the start of the window Recent uses. Days are calendar
// days in now's location, so very large windows do not overflow a Duration.
func Cutoff(days int, now time.Time) time.Time {
	return now.AddDate(0, 0, -days)
}
