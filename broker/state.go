package broker

// State is the full serialized form of a broker: cash, positions and
// trade log. Snapshots are written whole and restored whole; the last
// write wins.
type State struct {
	Balance   float64             `json:"balance"`
	Positions map[string]Position `json:"positions"`
	TradeLog  []TradeRecord       `json:"trade_log"`
}

// Store persists broker snapshots keyed by strategy name. Implementations
// must make Save an idempotent overwrite-by-key.
type Store interface {
	Save(key string, st State) error
	Load(key string) (st State, ok bool, err error)
}

// State captures a deep copy of the broker's mutable state.
func (b *Broker) State() State {
	positions := make(map[string]Position, len(b.positions))
	for instr, pos := range b.positions {
		positions[instr] = pos
	}
	return State{
		Balance:   b.cash,
		Positions: positions,
		TradeLog:  b.Trades(),
	}
}

// Restore replaces the broker's mutable state with a snapshot. The
// initial balance is untouched; it is a sizing reference, not state.
func (b *Broker) Restore(st State) {
	b.cash = st.Balance
	b.positions = make(map[string]Position, len(st.Positions))
	for instr, pos := range st.Positions {
		b.positions[instr] = pos
	}
	b.trades = append([]TradeRecord(nil), st.TradeLog...)
}

// SaveTo writes the broker's snapshot under its own name. Failures are
// logged and dropped; the broker keeps operating in memory.
func (b *Broker) SaveTo(s Store) {
	if s == nil {
		return
	}
	if err := s.Save(b.name, b.State()); err != nil {
		b.log.Error("save state failed", "error", err)
	}
}

// LoadFrom restores the broker from a stored snapshot if one exists.
// A missing or malformed snapshot leaves the broker fresh.
func (b *Broker) LoadFrom(s Store) {
	if s == nil {
		return
	}
	st, ok, err := s.Load(b.name)
	if err != nil {
		b.log.Error("load state failed, starting fresh", "error", err)
		return
	}
	if !ok {
		b.log.Info("no saved state, starting fresh")
		return
	}
	b.Restore(st)
	b.log.Info("state loaded", "balance", b.cash, "positions", len(b.positions))
}
