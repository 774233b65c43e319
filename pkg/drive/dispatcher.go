package drive

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/rauc-lab/being/pkg/can"
)

// EmergencyDispatcher routes incoming EMCY frames (COB-ID 0x80 + node
// id) to the drive of the emitting node. It implements can.FrameListener
// and is subscribed once per bus.
type EmergencyDispatcher struct {
	mu     sync.Mutex
	drives map[uint8]*Drive
	logger *log.Entry
}

func NewEmergencyDispatcher() *EmergencyDispatcher {
	return &EmergencyDispatcher{
		drives: map[uint8]*Drive{},
		logger: log.WithField("service", "[EMCY]"),
	}
}

// Register routes EMCY frames of the drive's node to it.
func (e *EmergencyDispatcher) Register(d *Drive) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drives[d.NodeId()] = d
}

// Handle decodes EMCY frames and dispatches them, other traffic is
// ignored. The SYNC COB-ID shares the EMCY base and carries no node id,
// it falls through the node id check.
func (e *EmergencyDispatcher) Handle(frame can.Frame) {
	id := frame.ID & can.CanSffMask
	if id <= can.CobIdEMCY || id > can.CobIdEMCY+127 {
		return
	}
	nodeId := uint8(id - can.CobIdEMCY)

	e.mu.Lock()
	d, ok := e.drives[nodeId]
	e.mu.Unlock()
	if !ok {
		return
	}

	emcy, err := EmergencyFromFrame(frame)
	if err != nil {
		e.logger.Warnf("node %d : %v", nodeId, err)
		return
	}
	d.HandleEmergency(emcy)
}
