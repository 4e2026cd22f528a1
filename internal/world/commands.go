package world

// Command is a deferred mutation of a store. Commands are built where the
// store is not available (for example on generation workers) and applied
// later by its owner.
type Command interface {
	Apply(s *Store)
}

// CommandQueue buffers commands in the order they were pushed.
type CommandQueue struct {
	commands []Command
}

// NewCommandQueue creates an empty queue.
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

// Push appends a command.
func (q *CommandQueue) Push(c Command) {
	q.commands = append(q.commands, c)
}

// Append moves every command of other to the end of q, leaving other empty.
func (q *CommandQueue) Append(other *CommandQueue) {
	q.commands = append(q.commands, other.commands...)
	other.commands = nil
}

// Len returns the number of buffered commands.
func (q *CommandQueue) Len() int {
	return len(q.commands)
}

// Commands returns the buffered commands without consuming them.
func (q *CommandQueue) Commands() []Command {
	return q.commands
}

// Apply runs every command against s in order and empties the queue.
func (q *CommandQueue) Apply(s *Store) {
	for _, c := range q.commands {
		c.Apply(s)
	}
	q.commands = nil
}

// SpawnTileCommand spawns one map tile.
type SpawnTileCommand struct {
	Tile Tile
}

func (c SpawnTileCommand) Apply(s *Store) {
	s.SpawnTile(c.Tile)
}

// SpawnSettlementCommand spawns a named settlement.
type SpawnSettlementCommand struct {
	Name       string
	Settlement Settlement
}

func (c SpawnSettlementCommand) Apply(s *Store) {
	s.SpawnSettlement(c.Name, c.Settlement)
}
