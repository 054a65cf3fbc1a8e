package notification

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Notification categories known to the delivery core. Incoming request types
// are mapped onto these by the preference collaborator; the table below keys
// off the mapped category.
const (
	CategoryPosts     = "posts"
	CategorySystem    = "system"
	CategoryMarketing = "marketing"
	CategoryChat      = "chat"
	CategorySecurity  = "security"
	CategoryDefault   = "default"
)

// ChannelTable maps a notification category to the channels used when the
// caller supplies no explicit channel list and the preference lookup fails or
// returns nothing. The table must be total: lookups for unmapped categories
// fall through to the CategoryDefault row.
type ChannelTable map[string][]Channel

// DefaultChannelTable returns the built-in fallback table. The mapping is a
// product decision carried over from the original rollout; operators can
// override it with LoadChannelTable without recompiling.
func DefaultChannelTable() ChannelTable {
	return ChannelTable{
		CategoryPosts:     {ChannelPush, ChannelInApp},
		CategorySystem:    {ChannelEmail, ChannelInApp},
		CategoryMarketing: {ChannelEmail},
		CategoryChat:      {ChannelPush, ChannelInApp},
		CategorySecurity:  {ChannelPush, ChannelEmail, ChannelInApp},
		CategoryDefault:   {ChannelPush, ChannelInApp},
	}
}

// For returns the channel list for the given category, falling back to the
// default row for unmapped categories. The returned slice is a copy so
// callers can filter it freely without mutating the table.
func (t ChannelTable) For(category string) []Channel {
	row, ok := t[category]
	if !ok {
		row = t[CategoryDefault]
	}
	out := make([]Channel, len(row))
	copy(out, row)
	return out
}

// Validate checks that every row contains only known channels and that a
// default row exists, so lookups are total over all categories.
func (t ChannelTable) Validate() error {
	if _, ok := t[CategoryDefault]; !ok {
		return ErrMissingDefaultRow
	}
	for category, row := range t {
		for _, ch := range row {
			if !ch.Valid() {
				return errors.Join(ErrInvalidTableEntry,
					fmt.Errorf("category %q: channel %q", category, ch))
			}
		}
	}
	return nil
}

// LoadChannelTable parses a YAML category→channels mapping, e.g.:
//
//	posts: [push, in_app]
//	marketing: [email]
//	default: [push, in_app]
//
// The parsed table is validated before being returned.
func LoadChannelTable(r io.Reader) (ChannelTable, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrInvalidTableEntry, err)
	}

	var t ChannelTable
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, errors.Join(ErrInvalidTableEntry, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
