package safety

// CycleProtocol defines an on/off cycling schedule for supplements that
// build tolerance or downregulate with continuous use.
type CycleProtocol struct {
	SupplementID       string `json:"supplement_id"`
	WeeksOn            int    `json:"weeks_on"`
	WeeksOff           int    `json:"weeks_off"`
	MaxConsecutiveDays int    `json:"max_consecutive_days"`
}

var cycleProtocols = map[string]CycleProtocol{
	"ashwagandha": {SupplementID: "ashwagandha", WeeksOn: 8, WeeksOff: 2, MaxConsecutiveDays: 60},
	"melatonin":   {SupplementID: "melatonin", WeeksOn: 4, WeeksOff: 1, MaxConsecutiveDays: 30},
	"caffeine":    {SupplementID: "caffeine", WeeksOn: 12, WeeksOff: 1, MaxConsecutiveDays: 90},
	"nac":         {SupplementID: "nac", WeeksOn: 8, WeeksOff: 4, MaxConsecutiveDays: 60},
	"lions_mane":  {SupplementID: "lions_mane", WeeksOn: 12, WeeksOff: 4, MaxConsecutiveDays: 90},
}

// CycleStatus is where a supplement stands in its cycling protocol.
type CycleStatus string

// CycleStatus values.
const (
	CycleOK          CycleStatus = "ok"
	CycleApproaching CycleStatus = "approaching"
	CycleNow         CycleStatus = "cycle_now"
)

// ProtocolFor returns the cycle protocol for a supplement, if any.
func ProtocolFor(supplementID string) (CycleProtocol, bool) {
	p, ok := cycleProtocols[supplementID]
	return p, ok
}

// Protocols returns every cycling protocol.
func Protocols() []CycleProtocol {
	out := make([]CycleProtocol, 0, len(cycleProtocols))
	for _, p := range cycleProtocols {
		out = append(out, p)
	}
	return out
}

// CheckCycleStatus is a pure step function of consecutive use days.
// Supplements without a protocol are always ok. The approaching window
// opens seven days before the limit.
func CheckCycleStatus(supplementID string, consecutiveDays int) CycleStatus {
	p, ok := cycleProtocols[supplementID]
	if !ok {
		return CycleOK
	}
	switch {
	case consecutiveDays >= p.MaxConsecutiveDays:
		return CycleNow
	case consecutiveDays >= p.MaxConsecutiveDays-7:
		return CycleApproaching
	default:
		return CycleOK
	}
}
