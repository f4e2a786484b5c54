// Package snapshot implements the framed binary save/load codec over a
// device.Device's live GPU-resident state (spec.md §4.6). Save stage-copies
// the four device buffers (metadata, particles, beams, mapping) to mappable
// buffers and maps them concurrently; Load parses the frame and writes the
// decoded sections straight back through the device queue.
package snapshot

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"os"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/charmbracelet/log"

	"github.com/spsquared/softbody-webgpu/device"
	"github.com/spsquared/softbody-webgpu/layout"
)

// ErrCapacityExceeded is returned by Load when either mapping section of the
// snapshot exceeds the target device's MaxParticles/MaxBeams. Simulation
// state is left unchanged.
var ErrCapacityExceeded = errors.New("snapshot: capacity exceeded")

// ErrTruncated is returned by Load when data is too short to even contain a
// header, or a section runs past the end of the buffer it claims to be in.
var ErrTruncated = errors.New("snapshot: truncated frame")

// headerWords is the number of little-endian u16 length fields at the start
// of a snapshot. Five of the six carry real section sizes (constants,
// particle mapping, particle data, beam mapping, beam data); the sixth is
// reserved, keeping the header a clean 12 bytes and leaving one word of
// headroom for a future section without changing HeaderSize.
const headerWords = 6

// HeaderSize is the byte size of the snapshot header.
const HeaderSize = headerWords * 2

// constantsSlabSize is the fixed byte size of the physics-constants slab
// (gravity x2, borderElasticity, borderFriction, elasticity, friction,
// dragCoeff, dragExp — 8 f32 fields).
const constantsSlabSize = 32

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "snapshot"})

type header struct {
	constantsSize       uint16
	particleMappingSize uint16
	particleDataSize    uint16
	beamMappingSize     uint16
	beamDataSize        uint16
	reserved            uint16
}

func encodeHeader(h header) []byte {
	buf := make([]byte, HeaderSize)
	layout.PutLeUint16(buf[0:2], h.constantsSize)
	layout.PutLeUint16(buf[2:4], h.particleMappingSize)
	layout.PutLeUint16(buf[4:6], h.particleDataSize)
	layout.PutLeUint16(buf[6:8], h.beamMappingSize)
	layout.PutLeUint16(buf[8:10], h.beamDataSize)
	layout.PutLeUint16(buf[10:12], h.reserved)
	return buf
}

func decodeHeader(buf []byte) header {
	return header{
		constantsSize:       layout.LeUint16(buf[0:2]),
		particleMappingSize: layout.LeUint16(buf[2:4]),
		particleDataSize:    layout.LeUint16(buf[4:6]),
		beamMappingSize:     layout.LeUint16(buf[6:8]),
		beamDataSize:        layout.LeUint16(buf[8:10]),
		reserved:            layout.LeUint16(buf[10:12]),
	}
}

var (
	pool     worker.DynamicWorkerPool
	poolOnce sync.Once
)

func ensurePool() worker.DynamicWorkerPool {
	poolOnce.Do(func() {
		pool = worker.NewDynamicWorkerPool(4, 16, time.Second)
	})
	return pool
}

// Save stage-copies the metadata, particle, beam, and mapping buffers of dev
// to mappable buffers and maps them read-only, one worker.Task per buffer
// with a sync.WaitGroup barrier before slicing out the live prefixes and
// concatenating the framed result (mirrors scenestore's WriteState fan-out,
// here over four independent GPU reads instead of four host-side shards).
func Save(dev *device.Device) ([]byte, error) {
	particleCount, beamCount, err := dev.ReadDrawCounts()
	if err != nil {
		return nil, fmt.Errorf("snapshot: save: %w", err)
	}

	var constants, particleData, beamData, particleMapping, beamMapping []byte
	var constantsErr, particleErr, beamErr, mappingErr error

	p := ensurePool()
	var wg sync.WaitGroup
	wg.Add(4)

	p.SubmitTask(worker.Task{ID: 0, Do: func() (any, error) {
		defer wg.Done()
		var slab [32]byte
		slab, constantsErr = dev.ReadConstantsSlab()
		constants = slab[:]
		return nil, nil
	}})
	p.SubmitTask(worker.Task{ID: 1, Do: func() (any, error) {
		defer wg.Done()
		particleData, particleErr = dev.ReadLiveParticles(particleCount)
		return nil, nil
	}})
	p.SubmitTask(worker.Task{ID: 2, Do: func() (any, error) {
		defer wg.Done()
		beamData, beamErr = dev.ReadLiveBeams(beamCount)
		return nil, nil
	}})
	p.SubmitTask(worker.Task{ID: 3, Do: func() (any, error) {
		defer wg.Done()
		particleMapping, mappingErr = dev.ReadLiveParticleMapping(particleCount)
		if mappingErr != nil {
			return nil, nil
		}
		beamMapping, mappingErr = dev.ReadLiveBeamMapping(beamCount)
		return nil, nil
	}})
	wg.Wait()

	for _, e := range []error{constantsErr, particleErr, beamErr, mappingErr} {
		if e != nil {
			return nil, fmt.Errorf("snapshot: save: %w", e)
		}
	}

	h := header{
		constantsSize:       uint16(len(constants)),
		particleMappingSize: uint16(len(particleMapping)),
		particleDataSize:    uint16(len(particleData)),
		beamMappingSize:     uint16(len(beamMapping)),
		beamDataSize:        uint16(len(beamData)),
	}

	out := make([]byte, 0, HeaderSize+len(constants)+len(particleMapping)+len(particleData)+len(beamMapping)+len(beamData))
	out = append(out, encodeHeader(h)...)
	out = append(out, constants...)
	out = append(out, particleMapping...)
	out = append(out, particleData...)
	out = append(out, beamMapping...)
	out = append(out, beamData...)

	logger.Debug("saved snapshot", "particles", particleCount, "beams", beamCount, "bytes", len(out))
	return out, nil
}

// Load parses a framed snapshot and writes it through dev's device queue. If
// either mapping section's entity count exceeds dev's MaxParticles/MaxBeams,
// Load returns ErrCapacityExceeded and changes nothing. Otherwise the
// particle/beam/mapping buffers and the physics-constants slab are
// overwritten, the force/delete-bitmap/secondary-particle scratch buffers
// are cleared, and ParticleCount/BeamCount in metadata are updated.
func Load(dev *device.Device, data []byte) error {
	if len(data) < HeaderSize {
		return ErrTruncated
	}
	h := decodeHeader(data[:HeaderSize])

	particleCount := int(h.particleMappingSize) / 2
	beamCount := int(h.beamMappingSize) / 2

	if particleCount > dev.MaxParticles || beamCount > dev.MaxBeams {
		logger.Warn("snapshot exceeds device capacity", "particleCount", particleCount, "beamCount", beamCount,
			"maxParticles", dev.MaxParticles, "maxBeams", dev.MaxBeams)
		return ErrCapacityExceeded
	}

	off := HeaderSize
	sections := make([][]byte, 0, 5)
	for _, size := range []int{int(h.constantsSize), int(h.particleMappingSize), int(h.particleDataSize), int(h.beamMappingSize), int(h.beamDataSize)} {
		if off+size > len(data) {
			return ErrTruncated
		}
		sections = append(sections, data[off:off+size])
		off += size
	}
	constants, particleMapping, particleData, beamMapping, beamData := sections[0], sections[1], sections[2], sections[3], sections[4]

	mapping := layout.NewMapping(dev.MaxParticles, dev.MaxBeams)
	for i := 0; i < particleCount; i++ {
		mapping.SetParticleSlot(i, layout.LeUint16(particleMapping[i*2:i*2+2]))
	}
	for i := 0; i < beamCount; i++ {
		mapping.SetBeamSlot(i, layout.LeUint16(beamMapping[i*2:i*2+2]))
	}

	dev.WriteParticlesAndBeams(mapping, particleData, beamData, particleCount, beamCount)
	dev.ClearScratch()
	if len(constants) == constantsSlabSize {
		dev.WriteConstantsSlab(constants)
	}

	logger.Debug("loaded snapshot", "particles", particleCount, "beams", beamCount)
	return nil
}
