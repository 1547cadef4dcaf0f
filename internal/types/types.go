package types

// Role is a closed category of running use-case. It doubles as a matching
// attribute on shoes and as the coverage-accounting unit for rotations.
type Role string

const (
	RoleDaily     Role = "daily"
	RoleLongRun   Role = "long-run"
	RoleTempo     Role = "tempo"
	RoleRace      Role = "race"
	RoleTrail     Role = "trail"
	RoleRecovery  Role = "recovery"
	RoleStability Role = "stability"
)

// RoleOrder is the canonical declaration order. UserVector.RolesNeeded is
// always filtered through this list so role order is deterministic no matter
// the insertion order during inference.
var RoleOrder = []Role{
	RoleDaily,
	RoleLongRun,
	RoleTempo,
	RoleRace,
	RoleTrail,
	RoleRecovery,
	RoleStability,
}

// EssentialRoleOrder is the anchor priority used by the assembler's first
// stage. It intentionally differs from RoleOrder: stability outranks
// long-run and tempo when locking in anchors.
var EssentialRoleOrder = []Role{
	RoleDaily,
	RoleStability,
	RoleLongRun,
	RoleTempo,
	RoleTrail,
}

type SupportLevel string

const (
	SupportNeutral       SupportLevel = "neutral"
	SupportStability     SupportLevel = "stability"
	SupportMotionControl SupportLevel = "motion-control"
)

type PriceTier string

const (
	TierBudget  PriceTier = "budget"
	TierMid     PriceTier = "mid"
	TierPremium PriceTier = "premium"
)

// TierOrder is the ordered price scale used for tier-distance decay.
var TierOrder = []PriceTier{TierBudget, TierMid, TierPremium}

type Width string

const (
	WidthNarrow   Width = "narrow"
	WidthStandard Width = "standard"
	WidthWide     Width = "wide"
)

type Terrain string

const (
	TerrainRoad  Terrain = "road"
	TerrainTrail Terrain = "trail"
	TerrainTrack Terrain = "track"
)

// PaceRange is a shoe's usable pace window in seconds per kilometer.
// Min is the fastest supported pace (fewer seconds), Max the slowest.
type PaceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PaceStrings is the human-readable pace window as it appears in catalog
// source data ("4:30" style, per km).
type PaceStrings struct {
	MinPacePerKm string `json:"minPacePerKm"`
	MaxPacePerKm string `json:"maxPacePerKm"`
}

// Shoe is a catalog entry. Shoes are constructed once at catalog-load time
// and shared read-only across all requests; Name is the unique key.
type Shoe struct {
	Name            string  `json:"name" validate:"required"`
	Brand           string  `json:"brand" validate:"required"`
	Model           string  `json:"model"`
	Price           float64 `json:"price" validate:"gt=0"`
	WeightOunces    float64 `json:"weightOunces"`
	OffsetMM        float64 `json:"offsetMilimeters"`
	HeelStackMM     float64 `json:"heelStackMm"`
	ForefootStackMM float64 `json:"forefootStackMm"`
	URL             string  `json:"url"`

	Roles             []Role       `json:"shoeTypes" validate:"min=1"`
	SupportLevel      SupportLevel `json:"supportLevel" validate:"oneof=neutral stability motion-control"`
	CushioningScale   float64      `json:"cushioningScale" validate:"gte=0,lte=10"`
	PaceRange         PaceStrings  `json:"paceRange"`
	PaceRangeSecPerKm PaceRange    `json:"paceRangeSecPerKm"`
	Terrain           []Terrain    `json:"terrain" validate:"min=1"`
	DurabilityKm      float64      `json:"durabilityKm" validate:"gt=0"`
	PriceTier         PriceTier    `json:"priceTier" validate:"oneof=budget mid premium"`
	WidthOptions      []Width      `json:"widthOptions" validate:"min=1"`
	ReleaseYear       int          `json:"releaseYear"`
}

// HasRole reports whether the shoe is built for the given role.
func (s *Shoe) HasRole(r Role) bool {
	for _, role := range s.Roles {
		if role == r {
			return true
		}
	}
	return false
}

// HasTerrain reports whether the shoe supports the given terrain.
func (s *Shoe) HasTerrain(t Terrain) bool {
	for _, terrain := range s.Terrain {
		if terrain == t {
			return true
		}
	}
	return false
}

// OffersWidth reports whether the shoe is available in the given width.
func (s *Shoe) OffersWidth(w Width) bool {
	for _, width := range s.WidthOptions {
		if width == w {
			return true
		}
	}
	return false
}

// Paces holds a runner's typical paces in seconds per kilometer.
type Paces struct {
	Easy  int `json:"easy"`
	Tempo int `json:"tempo"`
}

// Surfaces is the runner's surface mix in whole percentages. The three
// fields always sum to exactly 100 after normalization.
type Surfaces struct {
	Road      int `json:"road"`
	Treadmill int `json:"treadmill"`
	Trail     int `json:"trail"`
}

// UserVector is the normalized preference profile built from one quiz
// submission. It is immutable once built and discarded after the request.
type UserVector struct {
	RolesNeeded      []Role       `json:"rolesNeeded"`
	SupportLevel     SupportLevel `json:"supportLevel"`
	Cushioning       float64      `json:"cushioning"`
	PreferredWidth   Width        `json:"preferredWidth"`
	PriceTier        PriceTier    `json:"priceTier"`
	PacesSecPerKm    Paces        `json:"pacesSecPerKm"`
	MileageKmPerWeek float64      `json:"mileageKmPerWeek"`
	Surfaces         Surfaces     `json:"surfaces"`
	ExcludedBrands   []string     `json:"excludedBrands"`
	PreferVersatile  bool         `json:"preferVersatile"`
}

// NeedsRole reports whether the user's profile calls for the given role.
func (u *UserVector) NeedsRole(r Role) bool {
	for _, role := range u.RolesNeeded {
		if role == r {
			return true
		}
	}
	return false
}

// SimilarityBreakdown is the per-attribute similarity vector for one
// (user, shoe) pair. Every field is in [0,1]. An all-zero breakdown paired
// with a zero score signals brand exclusion, never a genuine mismatch.
type SimilarityBreakdown struct {
	Support     float64 `json:"support"`
	Cushioning  float64 `json:"cushioning"`
	Pace        float64 `json:"pace"`
	Terrain     float64 `json:"terrain"`
	Width       float64 `json:"width"`
	Price       float64 `json:"price"`
	Durability  float64 `json:"durability"`
	RoleFit     float64 `json:"roleFit"`
	Versatility float64 `json:"versatility"`
}

// ScoredShoe pairs a shoe with its weighted composite score and breakdown.
type ScoredShoe struct {
	Shoe      Shoe                `json:"shoe"`
	Score     float64             `json:"score"`
	Breakdown SimilarityBreakdown `json:"breakdown"`
}

// QuizPayload is the raw questionnaire submission. Only RunningGoal,
// WeeklyMileage and Budget are required; everything else degrades to a
// documented default during profile mapping.
type QuizPayload struct {
	RunningGoal           string  `json:"runningGoal" binding:"required"`
	WeeklyMileage         string  `json:"weeklyMileage" binding:"required"`
	FurthestRunDistance   string  `json:"furthestRunDistance"`
	EasyPace              string  `json:"easyPace"`
	TempoWorkoutPace      string  `json:"tempoWorkoutPace"`
	RoadPercentage        float64 `json:"roadPercentage"`
	TreadmillPercentage   float64 `json:"treadmillPercentage"`
	TrailPercentage       float64 `json:"trailPercentage"`
	SupportLevel          string  `json:"supportLevel"`
	CushioningPreference  string  `json:"cushioningPreference"`
	WidthNeeds            string  `json:"widthNeeds"`
	VersatilityPreference string  `json:"versatilityPreference"`
	Preferences           string  `json:"preferences"`
	InjuryHistory         string  `json:"injuryHistory"`
	Budget                string  `json:"budget" binding:"required"`
	ExcludedBrands        string  `json:"excludedBrands"`
}

// RecommendationResult is one selected shoe with its justification.
type RecommendationResult struct {
	Shoe         Shoe    `json:"shoe"`
	Score        float64 `json:"score"`
	Explanation  string  `json:"explanation"`
	RolesCovered []Role  `json:"rolesCovered"`
}

// RotationResponse is the full recommendation payload returned to callers.
type RotationResponse struct {
	Rotation       []RecommendationResult `json:"rotation"`
	UncoveredRoles []Role                 `json:"uncoveredRoles"`
	TotalScore     float64                `json:"totalScore"`
	Summary        string                 `json:"summary"`
	Debug          *DebugInfo             `json:"debug,omitempty"`
}

// DebugInfo is attached to responses in debug mode only.
type DebugInfo struct {
	UserVector    UserVector `json:"userVector"`
	CatalogCount  int        `json:"catalogCount"`
	FilteredCount int        `json:"filteredCount"`
	TopScores     []TopScore `json:"topScores"`
}

// TopScore is a compact (name, score) pair for debug output.
type TopScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
