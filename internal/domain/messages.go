package domain

// ClientMessage is what a websocket client sends.
type ClientMessage struct {
	Type       string `json:"type"`
	Algorithm  string `json:"algorithm,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	HumanFirst *bool  `json:"humanFirst,omitempty"`
	Column     int    `json:"column"`
}

// ServerMessage is what the server pushes to a websocket client.
type ServerMessage struct {
	Type        string  `json:"type"`
	Message     string  `json:"message,omitempty"`
	GameID      string  `json:"gameId,omitempty"`
	Opponent    string  `json:"opponent,omitempty"`
	YourPlayer  int     `json:"yourPlayer,omitempty"`
	CurrentTurn int     `json:"currentTurn,omitempty"`
	Column      int     `json:"column"`
	Row         int     `json:"row"`
	Player      int     `json:"player,omitempty"`
	Board       [][]int `json:"board,omitempty"`
	NextTurn    int     `json:"nextTurn,omitempty"`
	Winner      string  `json:"winner,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Score       *int    `json:"score,omitempty"`
	Nodes       int64   `json:"nodes,omitempty"`
}
