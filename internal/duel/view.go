package duel

// PlayerView is the public projection of a seated player.
type PlayerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PlayerNumber int    `json:"playerNumber"`
	Color        string `json:"color"`
	IsActive     bool   `json:"isActive"`
}

// View is a read-only snapshot for status queries and late joiners. It never
// carries cue timing.
type View struct {
	Phase          Phase        `json:"gameState"`
	Players        []PlayerView `json:"players"`
	CurrentRound   int          `json:"currentRound"`
	TotalRounds    int          `json:"totalRounds"`
	ActivePlayerID string       `json:"activePlayerId,omitempty"`
}

func (s *Session) View() View {
	v := View{
		Phase:        s.phase,
		Players:      make([]PlayerView, 0, s.roster.Count()),
		CurrentRound: s.round,
		TotalRounds:  s.totalRounds,
	}
	active := s.ActivePlayer()
	if active != nil {
		v.ActivePlayerID = active.ID
	}
	for _, p := range s.roster.GetList() {
		v.Players = append(v.Players, PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			PlayerNumber: p.Number,
			Color:        p.Color,
			IsActive:     active != nil && p.ID == active.ID,
		})
	}
	return v
}
