package sound

import "time"

// Waveform selects the oscillator shape for a note
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveSquare   Waveform = "square"
	WaveSawtooth Waveform = "sawtooth"
	WaveTriangle Waveform = "triangle"
)

// Note is a single tone within a cue, started Delay after cue start
type Note struct {
	Frequency float64
	Duration  time.Duration
	Wave      Waveform
	Delay     time.Duration
}

// Cue is a named, prioritized sequence of notes
type Cue struct {
	Name     string
	Priority Priority
	Notes    []Note
}

// Duration is the time from cue start until the last note ends
func (c Cue) Duration() time.Duration {
	var end time.Duration
	for _, n := range c.Notes {
		if d := n.Delay + n.Duration; d > end {
			end = d
		}
	}
	return end
}

var (
	// CueCoin plays on a score increment
	CueCoin = Cue{
		Name:     "coin",
		Priority: PriorityLow,
		Notes: []Note{
			{Frequency: 880, Duration: 100 * time.Millisecond, Wave: WaveSine},
			{Frequency: 1108.73, Duration: 150 * time.Millisecond, Wave: WaveSine, Delay: 80 * time.Millisecond},
		},
	}

	// CueLose plays on a score decrement
	CueLose = Cue{
		Name:     "lose",
		Priority: PriorityLow,
		Notes: []Note{
			{Frequency: 440, Duration: 150 * time.Millisecond, Wave: WaveSawtooth},
			{Frequency: 330, Duration: 200 * time.Millisecond, Wave: WaveSawtooth, Delay: 120 * time.Millisecond},
		},
	}

	// CueNewPlayer plays when a player joins the board
	CueNewPlayer = Cue{
		Name:     "new_player",
		Priority: PriorityMedium,
		Notes: []Note{
			{Frequency: 523.25, Duration: 120 * time.Millisecond, Wave: WaveSine},
			{Frequency: 659.25, Duration: 120 * time.Millisecond, Wave: WaveSine, Delay: 100 * time.Millisecond},
			{Frequency: 783.99, Duration: 180 * time.Millisecond, Wave: WaveSine, Delay: 200 * time.Millisecond},
		},
	}

	// CueDelete plays when a player is removed
	CueDelete = Cue{
		Name:     "delete",
		Priority: PriorityMedium,
		Notes: []Note{
			{Frequency: 200, Duration: 250 * time.Millisecond, Wave: WaveSquare},
		},
	}

	// CueFanfare plays on a leader change
	CueFanfare = Cue{
		Name:     "fanfare",
		Priority: PriorityHigh,
		Notes: []Note{
			{Frequency: 523.25, Duration: 200 * time.Millisecond, Wave: WaveTriangle},
			{Frequency: 659.25, Duration: 200 * time.Millisecond, Wave: WaveTriangle, Delay: 100 * time.Millisecond},
			{Frequency: 783.99, Duration: 200 * time.Millisecond, Wave: WaveTriangle, Delay: 200 * time.Millisecond},
			{Frequency: 1046.5, Duration: 350 * time.Millisecond, Wave: WaveTriangle, Delay: 300 * time.Millisecond},
		},
	}
)
