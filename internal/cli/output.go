package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case PlayerList:
		o.printPlayerList(v)
	case TimeRecord:
		o.printTimeRecord(v)
	case TimeList:
		o.printTimeList(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case TrailList:
		o.printNames("Trails", v.Trails)
	case WorldList:
		o.printNames("Worlds", v.Worlds)
	case Permission:
		fmt.Printf("Permission: %s\n", v.Permission)
	case Me:
		o.printMe(v)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	case StatusResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Trail response type (matches API)
type Trail struct {
	Name          string  `json:"name"`
	Started       bool    `json:"started"`
	StartingSpeed float64 `json:"starting_speed"`
	LastTime      float64 `json:"last_time"`
}

// Player response type
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Spectating  string    `json:"spectating"`
	Monitored   bool      `json:"monitored"`
	BikeType    string    `json:"bike_type"`
	Reputation  int       `json:"reputation"`
	WorldName   string    `json:"world_name"`
	LastTrick   string    `json:"last_trick"`
	Version     string    `json:"version"`
	Trails      []Trail   `json:"trails"`
	ConnectedAt time.Time `json:"connected_at"`
}

// PlayerList response type
type PlayerList struct {
	Players []Player `json:"players"`
}

// TimeRecord response type
type TimeRecord struct {
	ID          string     `json:"id"`
	PlayerID    string     `json:"player_id"`
	PlayerName  string     `json:"player_name"`
	TrailName   string     `json:"trail_name"`
	WorldName   string     `json:"world_name"`
	TotalTime   float64    `json:"total_time"`
	BikeType    string     `json:"bike_type"`
	Ignored     bool       `json:"ignored"`
	Verified    bool       `json:"verified"`
	SubmittedAt time.Time  `json:"submitted_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

// TimeList response type
type TimeList struct {
	Times []TimeRecord `json:"times"`
}

// Leaderboard response type
type Leaderboard struct {
	Trail string       `json:"trail"`
	Times []TimeRecord `json:"times"`
}

// TrailList response type
type TrailList struct {
	Trails []string `json:"trails"`
}

// WorldList response type
type WorldList struct {
	Worlds []string `json:"worlds"`
}

// Permission response type
type Permission struct {
	Permission string `json:"permission"`
}

// Me response type
type Me struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	SteamID    string `json:"steam_id"`
	Permission string `json:"permission"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// StatusResult response type
type StatusResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.Name, p.ID)
	if p.Monitored {
		fmt.Println("Monitored: yes")
	}
	if p.Spectating != "" {
		fmt.Printf("Spectating: %s\n", p.Spectating)
	}
	if p.BikeType != "" {
		fmt.Printf("Bike: %s\n", p.BikeType)
	}
	if p.WorldName != "" {
		fmt.Printf("World: %s\n", p.WorldName)
	}
	fmt.Printf("Reputation: %d\n", p.Reputation)
	if p.Version != "" {
		fmt.Printf("Version: %s\n", p.Version)
	}
	for _, t := range p.Trails {
		state := fmt.Sprintf("last %.3fs", t.LastTime)
		if t.Started {
			state = "in progress"
		}
		fmt.Printf("  - %s: %s\n", t.Name, state)
	}
}

func (o *Output) printPlayerList(l PlayerList) {
	fmt.Printf("Players (%d):\n", len(l.Players))
	for _, p := range l.Players {
		var flags []string
		if p.Monitored {
			flags = append(flags, "monitored")
		}
		if p.Spectating != "" {
			flags = append(flags, "watching "+p.Spectating)
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = " [" + strings.Join(flags, ", ") + "]"
		}
		fmt.Printf("  - %s (%s)%s\n", p.Name, p.ID, suffix)
	}
}

func (o *Output) printTimeRecord(t TimeRecord) {
	fmt.Printf("Time: %s\n", t.ID)
	fmt.Printf("Player: %s (%s)\n", t.PlayerName, t.PlayerID)
	fmt.Printf("Trail: %s\n", t.TrailName)
	fmt.Printf("Total: %.3fs\n", t.TotalTime)
	if t.Verified {
		fmt.Println("Verified: yes")
	}
	if t.Ignored {
		fmt.Println("Ignored: yes")
	}
}

func (o *Output) printTimeList(l TimeList) {
	if len(l.Times) == 0 {
		fmt.Println("No times recorded")
		return
	}
	fmt.Printf("Times (%d):\n", len(l.Times))
	for _, t := range l.Times {
		suffix := ""
		if t.Ignored {
			suffix = " [ignored]"
		}
		fmt.Printf("  - %s %s on %s: %.3fs%s\n", t.ID, t.PlayerName, t.TrailName, t.TotalTime, suffix)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Times) == 0 {
		fmt.Printf("No runs on %s\n", l.Trail)
		return
	}
	fmt.Printf("Leaderboard: %s\n", l.Trail)
	for i, t := range l.Times {
		mark := ""
		if t.Verified {
			mark = " *"
		}
		fmt.Printf("  %2d. %-20s %.3fs (%s)%s\n", i+1, t.PlayerName, t.TotalTime, t.ID, mark)
	}
}

func (o *Output) printNames(title string, names []string) {
	if len(names) == 0 {
		fmt.Printf("No %s\n", strings.ToLower(title))
		return
	}
	fmt.Printf("%s (%d):\n", title, len(names))
	for _, n := range names {
		fmt.Printf("  - %s\n", n)
	}
}

func (o *Output) printMe(m Me) {
	name := m.Username
	if name == "" {
		name = m.ID
	}
	fmt.Printf("Logged in as: %s (%s)\n", name, m.ID)
	if m.SteamID != "" {
		fmt.Printf("Steam: %s\n", m.SteamID)
	}
	fmt.Printf("Permission: %s\n", m.Permission)
}
