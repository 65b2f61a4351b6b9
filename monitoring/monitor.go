package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/streamsim/monitoring/web"
	"github.com/sarchlab/streamsim/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// A Controller can pause and continue a running program.
type Controller interface {
	Pause()
	Continue()
	IsPaused() bool
}

// A Program is a controllable program whose contexts and channels are
// registered in a simulation table.
type Program interface {
	Controller
	Simulation() *sim.Simulation
}

// Monitor turns a running program into a web server that shows its progress
// and lets users pause and continue it.
type Monitor struct {
	controller  Controller
	contexts    []sim.Context
	channels    []sim.BufferStatus
	portNumber  int
	openBrowser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
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

// WithBrowser makes StartServer open the monitor in a web browser.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterProgram registers the program and all its contexts and channels.
func (m *Monitor) RegisterProgram(p Program) {
	m.controller = p

	for _, c := range p.Simulation().Contexts() {
		m.RegisterContext(c)
	}

	for _, c := range p.Simulation().Channels() {
		m.RegisterChannel(c)
	}
}

// RegisterContext registers a context to be monitored.
func (m *Monitor) RegisterContext(c sim.Context) {
	m.contexts = append(m.contexts, c)
}

// RegisterChannel registers a channel for hang detection.
func (m *Monitor) RegisterChannel(c sim.BufferStatus) {
	m.channels = append(m.channels, c)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler that serves the monitoring API and web page.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.continueProgram)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_contexts", m.listContexts)
	r.HandleFunc("/api/context/{name}", m.listContextDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/hangdetector/channels", m.hangDetectorChannels)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns the URL it
// listens on.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	router := m.Router()
	go func() {
		err := http.Serve(listener, router)
		dieOnErr(err)
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return url
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	if m.controller == nil {
		http.Error(w, "no program registered", http.StatusServiceUnavailable)
		return
	}

	m.controller.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueProgram(w http.ResponseWriter, _ *http.Request) {
	if m.controller == nil {
		http.Error(w, "no program registered", http.StatusServiceUnavailable)
		return
	}

	m.controller.Continue()
	w.WriteHeader(http.StatusOK)
}

type nowRsp struct {
	Now    sim.VTimeInCycle `json:"now"`
	Paused bool             `json:"paused"`
}

// now reports the largest context time, which is the elapsed cycles so far.
func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	rsp := nowRsp{}
	for _, c := range m.contexts {
		if t := c.CurrentTime(); t > rsp.Now {
			rsp.Now = t
		}
	}

	if m.controller != nil {
		rsp.Paused = m.controller.IsPaused()
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listContexts(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.contexts))
	for _, c := range m.contexts {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) listContextDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	c := m.findContextOr404(w, name)
	if c == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(c)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	ContextName string `json:"context_name,omitempty"`
	FieldName   string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c := m.findContextOr404(w, req.ContextName)
	if c == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(c)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type channelRsp struct {
	Channel string `json:"channel"`
	Level   int    `json:"level"`
	Cap     int    `json:"cap"`
}

func (m *Monitor) hangDetectorChannels(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := channelsParseParams(r)
	if err != nil {
		http.Error(w, "Error: "+err.Error(), http.StatusBadRequest)
		return
	}

	selected := m.sortAndSelectChannels(sortMethod, limit, offset)

	rsp := make([]channelRsp, 0, len(selected))
	for _, c := range selected {
		rsp = append(rsp, channelRsp{
			Channel: c.Name(),
			Level:   c.Size(),
			Cap:     c.Capacity(),
		})
	}

	writeJSON(w, rsp)
}

func channelsParseParams(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	query := r.URL.Query()

	sortMethod = query.Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		return "", 0, 0, fmt.Errorf(
			"invalid sort method: %s. Allowed values are `level` and `percent`",
			sortMethod)
	}

	limit, err = intParam(query.Get("limit"))
	if err != nil {
		return "", 0, 0, err
	}

	offset, err = intParam(query.Get("offset"))
	if err != nil {
		return "", 0, 0, err
	}

	if limit < 0 || offset < 0 {
		return "", 0, 0, errors.New("limit and offset must not be negative")
	}

	return sortMethod, limit, offset, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

type channelLevel struct {
	sim.BufferStatus
	size    int
	percent float64
}

// sortAndSelectChannels sorts the channels from the fullest to the emptiest.
// A limit of 0 means no limit.
func (m *Monitor) sortAndSelectChannels(
	sortMethod string,
	limit, offset int,
) []sim.BufferStatus {
	levels := make([]channelLevel, len(m.channels))
	for i, c := range m.channels {
		size := c.Size()
		levels[i] = channelLevel{
			BufferStatus: c,
			size:         size,
			percent:      float64(size) / float64(c.Capacity()),
		}
	}

	sort.SliceStable(levels, func(i, j int) bool {
		a, b := levels[i], levels[j]

		if sortMethod == "level" {
			if a.size != b.size {
				return a.size > b.size
			}

			return a.percent > b.percent
		}

		if a.percent != b.percent {
			return a.percent > b.percent
		}

		return a.size > b.size
	})

	if offset > len(levels) {
		offset = len(levels)
	}

	end := len(levels)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	selected := make([]sim.BufferStatus, 0, end-offset)
	for _, l := range levels[offset:end] {
		selected = append(selected, l.BufferStatus)
	}

	return selected
}

func (m *Monitor) findContextOr404(
	w http.ResponseWriter,
	name string,
) sim.Context {
	for _, c := range m.contexts {
		if c.Name() == name {
			return c
		}
	}

	http.Error(w, "Context not found", http.StatusNotFound)

	return nil
}

type progressBarRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memInfo.RSS,
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

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
