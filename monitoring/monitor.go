// Package monitoring turns a physical memory into an HTTP server so that it
// can be inspected while a program uses it.
package monitoring

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/remap"
	"github.com/sarchlab/rawmem/tracing"
)

// DefaultMaxReadSize is the largest read served by /api/read unless changed
// with WithMaxReadSize.
const DefaultMaxReadSize = 64 * mem.KB

// MaxReadSizeLimit caps the value given to WithMaxReadSize.
const MaxReadSizeLimit = 16 * mem.MB

// StatsReporter provides the access statistics of a tracer.
type StatsReporter interface {
	Stats() tracing.Stats
}

// describer is implemented by memories that know where they come from.
type describer interface {
	ID() string
	Path() string
	Remapper() *remap.Remapper
}

// Monitor serves the content and the metadata of a memory over HTTP.
// Accesses issued by the server are serialized with a lock, as memories are
// not safe for concurrent use.
type Monitor struct {
	lock        sync.Mutex
	memory      mem.PhysicalMemory
	tracer      StatsReporter
	portNumber  int
	maxReadSize uint64
	allowWrite  bool
	listener    net.Listener
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		maxReadSize: DefaultMaxReadSize,
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithMaxReadSize limits the number of bytes a single request can read or
// write. Zero restores the default and values above MaxReadSizeLimit are
// clamped.
func (m *Monitor) WithMaxReadSize(size uint64) *Monitor {
	switch {
	case size == 0:
		size = DefaultMaxReadSize
	case size > MaxReadSizeLimit:
		size = MaxReadSizeLimit
	}

	m.maxReadSize = size

	return m
}

// MaxReadSize returns the largest number of bytes a request can transfer.
func (m *Monitor) MaxReadSize() uint64 {
	return m.maxReadSize
}

// WithWriteEnabled allows clients to write the memory.
func (m *Monitor) WithWriteEnabled(enabled bool) *Monitor {
	m.allowWrite = enabled
	return m
}

// RegisterMemory sets the memory to serve.
func (m *Monitor) RegisterMemory(memory mem.PhysicalMemory) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.memory = memory
}

// RegisterTracer sets the tracer whose statistics are reported.
func (m *Monitor) RegisterTracer(t StatsReporter) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.tracer = t
}

// Router returns the handler of the monitoring API.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/metadata", m.metadata).Methods(http.MethodGet)
	r.HandleFunc("/api/memory", m.memoryDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/read/{addr}/{size}", m.read).Methods(http.MethodGet)
	r.HandleFunc("/api/write/{addr}", m.write).Methods(http.MethodPost)
	r.HandleFunc("/api/trace", m.traceStats).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts serving in the background and returns the URL of the
// server.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	m.listener = listener

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring memory with %s\n", url)

	router := m.Router()

	go func() {
		err := http.Serve(listener, router)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			log.Panic(err)
		}
	}()

	return url, nil
}

// StopServer stops accepting requests.
func (m *Monitor) StopServer() error {
	if m.listener == nil {
		return nil
	}

	err := m.listener.Close()
	m.listener = nil

	return err
}

func (m *Monitor) memoryOr404(w http.ResponseWriter) mem.PhysicalMemory {
	if m.memory == nil {
		http.Error(w, "no memory registered", http.StatusNotFound)
		return nil
	}

	return m.memory
}

func (m *Monitor) metadata(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	memory := m.memoryOr404(w)
	if memory == nil {
		return
	}

	writeJSON(w, memory.Metadata())
}

type memoryInfo struct {
	ID       string
	Path     string
	Metadata mem.Metadata
	Entries  []remap.Entry
}

func (m *Monitor) memoryDetails(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	memory := m.memoryOr404(w)
	if memory == nil {
		return
	}

	info := memoryInfo{Metadata: memory.Metadata()}
	if d, ok := memory.(describer); ok {
		info.ID = d.ID()
		info.Path = d.Path()
		info.Entries = d.Remapper().Entries()
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&info)
	serializer.SetMaxDepth(2)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type readRsp struct {
	Addr uint64 `json:"addr"`
	Size uint64 `json:"size"`
	Data string `json:"data"`
}

func (m *Monitor) read(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	addr, err := strconv.ParseUint(vars["addr"], 0, 64)
	if err != nil {
		http.Error(w, "invalid address: "+err.Error(), http.StatusBadRequest)
		return
	}

	size, err := strconv.ParseUint(vars["size"], 0, 64)
	if err != nil || size == 0 || size > m.maxReadSize {
		http.Error(w,
			fmt.Sprintf("size must be between 1 and %d", m.maxReadSize),
			http.StatusBadRequest)

		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	memory := m.memoryOr404(w)
	if memory == nil {
		return
	}

	buf := make([]byte, size)
	results := memory.PhysRead([]mem.ReadOp{{Addr: addr, Buf: buf}})

	if err := results[0]; err != nil {
		writeAccessError(w, err)
		return
	}

	writeJSON(w, readRsp{
		Addr: addr,
		Size: size,
		Data: hex.EncodeToString(buf),
	})
}

type writeRsp struct {
	Addr    uint64 `json:"addr"`
	Written int    `json:"written"`
}

func (m *Monitor) write(w http.ResponseWriter, r *http.Request) {
	if !m.allowWrite {
		http.Error(w, "writing is disabled", http.StatusForbidden)
		return
	}

	addr, err := strconv.ParseUint(mux.Vars(r)["addr"], 0, 64)
	if err != nil {
		http.Error(w, "invalid address: "+err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, int64(m.maxReadSize)*2+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := hex.DecodeString(string(bytes.TrimSpace(body)))
	if err != nil || len(data) == 0 || uint64(len(data)) > m.maxReadSize {
		http.Error(w, "body must be non-empty hex data", http.StatusBadRequest)
		return
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	memory := m.memoryOr404(w)
	if memory == nil {
		return
	}

	results := memory.PhysWrite([]mem.WriteOp{{Addr: addr, Data: data}})
	if err := results[0]; err != nil {
		writeAccessError(w, err)
		return
	}

	writeJSON(w, writeRsp{Addr: addr, Written: len(data)})
}

func (m *Monitor) traceStats(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	tracer := m.tracer
	m.lock.Unlock()

	if tracer == nil {
		http.Error(w, "tracing is not enabled", http.StatusNotFound)
		return
	}

	writeJSON(w, tracer.Stats())
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeAccessError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch mem.KindOf(err) {
	case mem.KindOutOfBounds:
		status = http.StatusRequestedRangeNotSatisfiable
	case mem.KindReadOnly:
		status = http.StatusForbidden
	case mem.KindInvalidArgs:
		status = http.StatusBadRequest
	}

	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
