package inventory

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"iss-assistant-backend/internal/observability"
)

const (
	DefaultWasteDays = 30
	maxWasteDays     = 3650
	maxWasteItems    = 15
	maxSimulateDays  = 3650
)

var (
	itemNames = []string{
		"Food Packet", "Oxygen Cylinder", "First Aid Kit", "Water Bottle",
		"Nitrogen Tank", "Thermal Blanket", "Screwdriver Set", "Medical Syringe",
		"Protein Bar", "Filter Cartridge", "Battery Pack", "Hygiene Kit",
	}
	zones = []string{
		"Crew Quarters", "Airlock", "Medical Bay", "Storage Bay",
		"Laboratory", "Command Center", "Engineering Bay", "Greenhouse",
	}
	wasteReasons = []string{"Expired", "Out of Uses"}
	logActions   = []string{"placement", "retrieval", "rearrangement", "disposal"}
)

// Synthesizer fabricates backend-shaped results. It never fails, and for a
// given endpoint the produced value always has the same set of keys.
type Synthesizer struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewSynthesizer seeds the generator; seed 0 means time-based.
func NewSynthesizer(seed int64) *Synthesizer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Synthesizer{rnd: rand.New(rand.NewSource(seed)), now: time.Now}
}

// WithClock replaces the time source.
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	s.now = now
	return s
}

// Synthesize returns a stand-in for the backend's answer to endpoint.
func (s *Synthesizer) Synthesize(endpoint string, params map[string]any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	observability.RecordSynthetic(routeLabel(endpoint))
	now := s.now()

	switch normalizeEndpoint(endpoint) {
	case "/api/waste/identify":
		return s.wasteIdentify(now, daysParam(params))
	case "/api/search":
		return s.search(params)
	case "/api/retrieve", "/api/place":
		return SuccessResponse{Success: true}
	case "/api/placement":
		return s.placement()
	case "/api/waste/return-plan":
		return s.returnPlan(now, params)
	case "/api/waste/complete-undocking":
		return UndockingResponse{Success: true, ItemsRemoved: s.rnd.Intn(10) + 1}
	case "/api/simulate/day":
		return s.simulateDay(now, params)
	case "/api/logs":
		return s.logs(now)
	case "/api/import/items":
		return ImportItemsResponse{Success: true, ItemsImported: s.rnd.Intn(50) + 1, Errors: []ImportError{}}
	case "/api/import/containers":
		return ImportContainersResponse{Success: true, ContainersImported: s.rnd.Intn(10) + 1, Errors: []ImportError{}}
	default:
		return GenericResponse{Success: true, Message: "Operation completed successfully"}
	}
}

func (s *Synthesizer) wasteIdentify(now time.Time, days float64) WasteIdentifyResponse {
	window := time.Duration(days * float64(24*time.Hour))
	n := s.rnd.Intn(maxWasteItems) + 1
	items := make([]WasteItem, 0, n)
	for i := 0; i < n; i++ {
		var offset time.Duration
		if window > 0 {
			offset = time.Duration(s.rnd.Int63n(int64(window) + 1))
		}
		items = append(items, WasteItem{
			ItemID:      s.itemID(),
			Name:        s.pick(itemNames),
			Reason:      s.pick(wasteReasons),
			ContainerID: s.containerID(),
			Position:    s.position(),
			ExpiryDate:  now.Add(offset).UTC().Format(time.RFC3339Nano),
		})
	}
	return WasteIdentifyResponse{Success: true, WasteItems: items}
}

func (s *Synthesizer) search(params map[string]any) SearchResponse {
	item := SearchItem{
		ItemID:      stringParam(params, "itemId"),
		Name:        stringParam(params, "itemName"),
		ContainerID: s.containerID(),
		Zone:        s.pick(zones),
		Position:    s.position(),
	}
	if item.ItemID == "" {
		item.ItemID = s.itemID()
	}
	if item.Name == "" {
		item.Name = s.pick(itemNames)
	}
	steps := make([]RetrievalStep, 0, 3)
	blockers := s.rnd.Intn(3)
	for i := 0; i < blockers; i++ {
		steps = append(steps, RetrievalStep{Step: len(steps) + 1, Action: "remove", ItemID: s.itemID(), ItemName: s.pick(itemNames)})
	}
	steps = append(steps, RetrievalStep{Step: len(steps) + 1, Action: "retrieve", ItemID: item.ItemID, ItemName: item.Name})
	return SearchResponse{Success: true, Found: true, Item: item, RetrievalSteps: steps}
}

func (s *Synthesizer) placement() PlacementResponse {
	n := s.rnd.Intn(5) + 1
	placements := make([]Placement, 0, n)
	for i := 0; i < n; i++ {
		placements = append(placements, Placement{ItemID: s.itemID(), ContainerID: s.containerID(), Position: s.position()})
	}
	return PlacementResponse{Success: true, Placements: placements, Rearrangements: []RearrangementStep{}}
}

func (s *Synthesizer) returnPlan(now time.Time, params map[string]any) ReturnPlanResponse {
	target := stringParam(params, "undockingContainerId")
	if target == "" {
		target = s.containerID()
	}
	date := stringParam(params, "undockingDate")
	if date == "" {
		date = now.UTC().Format(time.RFC3339)
	}
	n := s.rnd.Intn(5) + 1
	plan := make([]ReturnPlanStep, 0, n)
	steps := make([]RetrievalStep, 0, n)
	manifest := make([]ReturnManifestItem, 0, n)
	var volume, weight float64
	for i := 0; i < n; i++ {
		id, name := s.itemID(), s.pick(itemNames)
		plan = append(plan, ReturnPlanStep{Step: i + 1, ItemID: id, ItemName: name, FromContainer: s.containerID(), ToContainer: target})
		steps = append(steps, RetrievalStep{Step: i + 1, Action: "retrieve", ItemID: id, ItemName: name})
		manifest = append(manifest, ReturnManifestItem{ItemID: id, Name: name, Reason: s.pick(wasteReasons)})
		volume += float64(s.rnd.Intn(9000) + 1000)
		weight += float64(s.rnd.Intn(20) + 1)
	}
	return ReturnPlanResponse{
		Success:        true,
		ReturnPlan:     plan,
		RetrievalSteps: steps,
		ReturnManifest: ReturnManifest{
			UndockingContainerID: target,
			UndockingDate:        date,
			ReturnItems:          manifest,
			TotalVolume:          volume,
			TotalWeight:          weight,
		},
	}
}

func (s *Synthesizer) simulateDay(now time.Time, params map[string]any) SimulationResponse {
	days := intParam(params, "numOfDays", 1, maxSimulateDays)
	used := make([]ItemUsed, 0)
	for i := s.rnd.Intn(4); i > 0; i-- {
		used = append(used, ItemUsed{ItemID: s.itemID(), Name: s.pick(itemNames), RemainingUses: s.rnd.Intn(20)})
	}
	return SimulationResponse{
		Success: true,
		NewDate: now.AddDate(0, 0, days).UTC().Format(time.RFC3339),
		Changes: SimulationChanges{
			ItemsUsed:          used,
			ItemsExpired:       s.itemRefs(s.rnd.Intn(3)),
			ItemsDepletedToday: s.itemRefs(s.rnd.Intn(2)),
		},
	}
}

func (s *Synthesizer) logs(now time.Time) LogsResponse {
	n := s.rnd.Intn(5) + 1
	entries := make([]LogEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, LogEntry{
			Timestamp:  now.Add(-time.Duration(s.rnd.Intn(72)) * time.Hour).UTC().Format(time.RFC3339),
			UserID:     fmt.Sprintf("astronaut%d", s.rnd.Intn(6)+1),
			ActionType: s.pick(logActions),
			ItemID:     s.itemID(),
			Details:    map[string]any{"toContainer": s.containerID()},
		})
	}
	return LogsResponse{Logs: entries}
}

func (s *Synthesizer) itemRefs(n int) []ItemRef {
	out := make([]ItemRef, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ItemRef{ItemID: s.itemID(), Name: s.pick(itemNames)})
	}
	return out
}

func (s *Synthesizer) position() Position {
	w, d, h := float64(s.rnd.Intn(50)), float64(s.rnd.Intn(50)), float64(s.rnd.Intn(50))
	return Position{
		StartCoordinates: Coordinates{Width: w, Depth: d, Height: h},
		EndCoordinates:   Coordinates{Width: w + float64(s.rnd.Intn(20)+5), Depth: d + float64(s.rnd.Intn(20)+5), Height: h + float64(s.rnd.Intn(20)+5)},
	}
}

func (s *Synthesizer) itemID() string      { return fmt.Sprintf("%03d", s.rnd.Intn(1000)) }
func (s *Synthesizer) containerID() string { return fmt.Sprintf("cont%c", 'A'+rune(s.rnd.Intn(26))) }

func (s *Synthesizer) pick(from []string) string { return from[s.rnd.Intn(len(from))] }

func normalizeEndpoint(endpoint string) string {
	e := strings.TrimSpace(endpoint)
	if i := strings.IndexAny(e, "?#"); i >= 0 {
		e = e[:i]
	}
	e = strings.TrimRight(e, "/")
	if e != "" && !strings.HasPrefix(e, "/") {
		e = "/" + e
	}
	return strings.ToLower(e)
}

// daysParam reads the waste window from params, accepting numbers and
// numeric strings. Missing or non-positive values fall back to the default.
func daysParam(params map[string]any) float64 {
	f, ok := numberParam(params["days"])
	switch {
	case !ok || !(f > 0):
	case f > maxWasteDays:
		return maxWasteDays
	default:
		return f
	}
	return DefaultWasteDays
}

// intParam reads a positive whole number, capped at limit.
func intParam(params map[string]any, key string, def, limit int) int {
	f, ok := numberParam(params[key])
	switch {
	case !ok || !(f >= 1):
		return def
	case f > float64(limit):
		return limit
	default:
		return int(f)
	}
}

func numberParam(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
