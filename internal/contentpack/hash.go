// Package contentpack holds the pure functions every stage applies to a
// content pack: hashing, stamping, structural validation, TODO extraction and
// string flattening.
package contentpack

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/zeebo/blake3"

	"site-pipeline/internal/models"
)

// Hash returns the content hash of a pack. Identity and stamping fields are
// excluded so the same content always hashes the same.
func Hash(pack *models.ContentPack) (string, error) {
	c := *pack
	c.ProjectID = ""
	c.Version = ""
	c.GeneratedAt = time.Time{}
	c.Hash = ""
	c.SourceHash = ""

	data, err := json.Marshal(&c)
	if err != nil {
		return "", fmt.Errorf("marshal content pack: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// IntakeHash fingerprints the input a pack was generated from. Add-on order
// does not matter.
func IntakeHash(intake models.ProjectIntake) (string, error) {
	c := intake.Clone()
	sort.Strings(c.SelectedAddons)

	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal intake: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Stamp sets identity fields, normalizes slugs and SEO keys and computes the
// content hash.
func Stamp(pack *models.ContentPack, projectID, version, sourceHash string, now time.Time) error {
	pack.ProjectID = projectID
	pack.Version = version
	pack.SourceHash = sourceHash
	pack.GeneratedAt = now.UTC()

	for i := range pack.Pages {
		pack.Pages[i].Slug = models.NormalizeSlug(pack.Pages[i].Slug)
	}
	if len(pack.SEO) > 0 {
		seo := make(map[string]models.SEOEntry, len(pack.SEO))
		for k, v := range pack.SEO {
			seo[models.NormalizeSlug(k)] = v
		}
		pack.SEO = seo
	}

	hash, err := Hash(pack)
	if err != nil {
		return err
	}
	pack.Hash = hash
	return nil
}

// Fresh reports whether a stored pack can be reused for an intake with the
// given hash.
func Fresh(pack *models.ContentPack, intakeHash string, ttl time.Duration, now time.Time) bool {
	if pack == nil || pack.Hash == "" || pack.GeneratedAt.IsZero() {
		return false
	}
	if pack.SourceHash != intakeHash {
		return false
	}
	return now.Sub(pack.GeneratedAt) < ttl
}
