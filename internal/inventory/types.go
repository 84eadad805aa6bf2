package inventory

// Response shapes of the inventory backend. Fields carry no omitempty so a
// synthesized response always has the same keys for the same endpoint.

type Coordinates struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
}

type Position struct {
	StartCoordinates Coordinates `json:"startCoordinates"`
	EndCoordinates   Coordinates `json:"endCoordinates"`
}

type WasteItem struct {
	ItemID      string   `json:"itemId"`
	Name        string   `json:"name"`
	Reason      string   `json:"reason"`
	ContainerID string   `json:"containerId"`
	Position    Position `json:"position"`
	ExpiryDate  string   `json:"expiryDate"`
}

type WasteIdentifyResponse struct {
	Success    bool        `json:"success"`
	WasteItems []WasteItem `json:"wasteItems"`
}

type RetrievalStep struct {
	Step     int    `json:"step"`
	Action   string `json:"action"`
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
}

type SearchItem struct {
	ItemID      string   `json:"itemId"`
	Name        string   `json:"name"`
	ContainerID string   `json:"containerId"`
	Zone        string   `json:"zone"`
	Position    Position `json:"position"`
}

type SearchResponse struct {
	Success        bool            `json:"success"`
	Found          bool            `json:"found"`
	Item           SearchItem      `json:"item"`
	RetrievalSteps []RetrievalStep `json:"retrievalSteps"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type Placement struct {
	ItemID      string   `json:"itemId"`
	ContainerID string   `json:"containerId"`
	Position    Position `json:"position"`
}

type RearrangementStep struct {
	Step          int      `json:"step"`
	Action        string   `json:"action"`
	ItemID        string   `json:"itemId"`
	FromContainer string   `json:"fromContainer"`
	FromPosition  Position `json:"fromPosition"`
	ToContainer   string   `json:"toContainer"`
	ToPosition    Position `json:"toPosition"`
}

type PlacementResponse struct {
	Success        bool                `json:"success"`
	Placements     []Placement         `json:"placements"`
	Rearrangements []RearrangementStep `json:"rearrangements"`
}

type ReturnPlanStep struct {
	Step          int    `json:"step"`
	ItemID        string `json:"itemId"`
	ItemName      string `json:"itemName"`
	FromContainer string `json:"fromContainer"`
	ToContainer   string `json:"toContainer"`
}

type ReturnManifestItem struct {
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ReturnManifest struct {
	UndockingContainerID string               `json:"undockingContainerId"`
	UndockingDate        string               `json:"undockingDate"`
	ReturnItems          []ReturnManifestItem `json:"returnItems"`
	TotalVolume          float64              `json:"totalVolume"`
	TotalWeight          float64              `json:"totalWeight"`
}

type ReturnPlanResponse struct {
	Success        bool             `json:"success"`
	ReturnPlan     []ReturnPlanStep `json:"returnPlan"`
	RetrievalSteps []RetrievalStep  `json:"retrievalSteps"`
	ReturnManifest ReturnManifest   `json:"returnManifest"`
}

type UndockingResponse struct {
	Success      bool `json:"success"`
	ItemsRemoved int  `json:"itemsRemoved"`
}

type ItemRef struct {
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
}

type ItemUsed struct {
	ItemID        string `json:"itemId"`
	Name          string `json:"name"`
	RemainingUses int    `json:"remainingUses"`
}

type SimulationChanges struct {
	ItemsUsed          []ItemUsed `json:"itemsUsed"`
	ItemsExpired       []ItemRef  `json:"itemsExpired"`
	ItemsDepletedToday []ItemRef  `json:"itemsDepletedToday"`
}

type SimulationResponse struct {
	Success bool              `json:"success"`
	NewDate string            `json:"newDate"`
	Changes SimulationChanges `json:"changes"`
}

type LogEntry struct {
	Timestamp  string         `json:"timestamp"`
	UserID     string         `json:"userId"`
	ActionType string         `json:"actionType"`
	ItemID     string         `json:"itemId"`
	Details    map[string]any `json:"details"`
}

type LogsResponse struct {
	Logs []LogEntry `json:"logs"`
}

type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportItemsResponse struct {
	Success       bool          `json:"success"`
	ItemsImported int           `json:"itemsImported"`
	Errors        []ImportError `json:"errors"`
}

type ImportContainersResponse struct {
	Success            bool          `json:"success"`
	ContainersImported int           `json:"containersImported"`
	Errors             []ImportError `json:"errors"`
}

type GenericResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
