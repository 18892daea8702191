package domain

// SourceType distinguishes the two ingestion variants.
type SourceType string

const (
	SourceTypeURL   SourceType = "url"
	SourceTypePhoto SourceType = "photo"
)

// ValidSourceTypes is the set of accepted source types.
var ValidSourceTypes = map[SourceType]bool{
	SourceTypeURL:   true,
	SourceTypePhoto: true,
}

// DifficultyLevel buckets a difficulty score.
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Valid reports whether the level is one of the three known buckets.
func (d DifficultyLevel) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// DifficultyFromScore maps a 0-100 score to its bucket: 0-30 easy,
// 31-70 medium, 71-100 hard. Out-of-range scores are clamped.
func DifficultyFromScore(score int) DifficultyLevel {
	switch {
	case score <= 30:
		return DifficultyEasy
	case score <= 70:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// PhotoType represents the allowed photo upload types.
type PhotoType string

const (
	PhotoTypeJPG PhotoType = "jpg"
	PhotoTypePNG PhotoType = "png"
)

// AllowedPhotoContentTypes maps MIME content types to PhotoType.
var AllowedPhotoContentTypes = map[string]PhotoType{
	"image/jpeg": PhotoTypeJPG,
	"image/png":  PhotoTypePNG,
}
