package narrate

import "encoding/json"

// Event is one narrated ply.
type Event struct {
	Ply         int    `json:"ply" bson:"ply"`
	UCI         string `json:"uci" bson:"uci"`
	SAN         string `json:"san" bson:"san"`
	Description string `json:"description" bson:"description"`
	Narrative   string `json:"narrative,omitempty" bson:"narrative,omitempty"`
}

func (e Event) String() string {
	j, _ := json.MarshalIndent(e, "", "\t")
	return string(j)
}

// GameChronicle is every narrated ply of one game with its headers.
type GameChronicle struct {
	White  string  `json:"white,omitempty"`
	Black  string  `json:"black,omitempty"`
	Date   string  `json:"date,omitempty"`
	Result string  `json:"result"`
	Events []Event `json:"events"`
}

func (c GameChronicle) String() string {
	j, _ := json.MarshalIndent(c, "", "\t")
	return string(j)
}
