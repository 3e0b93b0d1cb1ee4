package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"clubhub/internal/models"

	"gorm.io/gorm"
)

// ImportClubs reads a club directory CSV with a header row naming the
// columns name, category, meeting_time, location, member_count and
// description (any order, extra columns ignored). Imported clubs are
// verified so they show in the feed, but have no officer. Existing names
// are skipped. It returns the number of clubs created.
func ImportClubs(ctx context.Context, db *gorm.DB, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["name"]; !ok {
		return 0, errors.New("csv is missing a name column")
	}

	created := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return created, fmt.Errorf("read csv line %d: %w", line, err)
		}

		field := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := field("name")
		if name == "" {
			continue
		}
		var existing int64
		if err := db.WithContext(ctx).Model(&models.Club{}).Where("name = ?", name).Count(&existing).Error; err != nil {
			return created, fmt.Errorf("look up club %q: %w", name, err)
		}
		if existing > 0 {
			continue
		}
		club := models.Club{
			Name:        name,
			Category:    field("category"),
			MeetingTime: field("meeting_time"),
			Location:    field("location"),
			MemberCount: parseMemberCount(field("member_count")),
			Description: field("description"),
			Verified:    true,
		}
		if err := db.WithContext(ctx).Create(&club).Error; err != nil {
			return created, fmt.Errorf("import club %q: %w", name, err)
		}
		created++
	}
	return created, nil
}

// parseMemberCount accepts "42" or "42.0"; anything else counts as zero.
func parseMemberCount(raw string) int {
	if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 {
		return int(f)
	}
	return 0
}
