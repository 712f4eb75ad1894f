package feed

import "encoding/json"

const (
	actionFeatured = "featured"
	actionFen      = "fen"
)

type PlayerInfo struct {
	Color string `json:"color"`
	User  struct {
		Name  string `json:"name"`
		Id    string `json:"id"`
		Title string `json:"title"`
	} `json:"user"`
	Rating int `json:"rating"`
}

type GameStart struct {
	Id          string       `json:"id"`
	Orientation string       `json:"orientation"`
	Players     []PlayerInfo `json:"players"`
	Fen         string       `json:"fen"`
}

// White returns the white player's name, or an empty string.
func (g GameStart) White() string {
	return g.player("white")
}

func (g GameStart) Black() string {
	return g.player("black")
}

func (g GameStart) player(color string) string {
	for _, p := range g.Players {
		if p.Color == color {
			return p.User.Name
		}
	}
	return ""
}

type GameTurn struct {
	Fen             string `json:"fen"`
	TurnUciNotation string `json:"lm"`
	WhiteClock      int    `json:"wc"`
	BlackClock      int    `json:"bc"`
}

type LiveMessage struct {
	Action string          `json:"t"`
	Data   json.RawMessage `json:"d"`
}
