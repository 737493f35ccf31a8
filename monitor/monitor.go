// Package monitor serves live views of the profiler over HTTP: session
// listings, deep session state, process resource usage, on-demand CPU
// profiles, and a websocket stream for dashboards.
package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"

	"github.com/tracelab/optrace/profiler"
)

// portEnv names the environment variable consulted when no port is set
// explicitly.
const portEnv = "OPTRACE_MONITOR_PORT"

// Monitor serves the inspection API for live profiling sessions.
type Monitor struct {
	portNumber int
	logger     *zap.Logger
}

// NewMonitor creates a Monitor that listens on a random port and logs
// nothing.
func NewMonitor() *Monitor {
	return &Monitor{
		logger: zap.NewNop(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger for server life-cycle events.
func (m *Monitor) WithLogger(logger *zap.Logger) *Monitor {
	m.logger = logger

	return m
}

// StartServer starts serving the API on a background goroutine and returns
// the port it listens on.
func (m *Monitor) StartServer() int {
	r := m.buildRouter()

	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.resolvePort()))
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port

	fmt.Fprintf(os.Stderr,
		"Monitoring profiler sessions with http://localhost:%d\n", port)
	m.logger.Info("monitor listening", zap.Int("port", port))

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	return port
}

func (m *Monitor) buildRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/sessions", m.listSessions)
	r.HandleFunc("/api/session/{id}", m.sessionDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/ws", m.streamSessions)

	return r
}

func (m *Monitor) resolvePort() int {
	if m.portNumber > 0 {
		return m.portNumber
	}

	if v := os.Getenv(portEnv); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p >= 1000 {
			return p
		}

		fmt.Fprintf(os.Stderr, "Ignoring invalid %s value %q.\n", portEnv, v)
	}

	return 0
}

func (m *Monitor) listSessions(w http.ResponseWriter, _ *http.Request) {
	b, err := json.Marshal(profiler.Sessions())
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func (m *Monitor) sessionDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	state, ok := profiler.SessionState(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Session not found"))
		dieOnErr(err)

		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(state)
	serializer.SetMaxDepth(3)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	b, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	b, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamSessions pushes the session list right away and then once a second
// until the client goes away.
func (m *Monitor) streamSessions(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	m.logger.Info("websocket client connected",
		zap.String("remote", conn.RemoteAddr().String()))

	if err := conn.WriteJSON(profiler.Sessions()); err != nil {
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(profiler.Sessions()); err != nil {
			m.logger.Info("websocket client gone",
				zap.String("remote", conn.RemoteAddr().String()))
			return
		}
	}
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
