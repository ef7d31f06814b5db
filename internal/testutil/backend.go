package testutil

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/clientdesk/pkg/types"
)

// RecordedRequest is one request seen by FakeBackend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// FakeBackend is an in-memory CRM backend served over httptest. Fields are
// exported so tests can seed and inspect state; hold Lock while doing so
// once requests are in flight.
type FakeBackend struct {
	sync.Mutex

	Token     string
	Blocks    []types.Block
	Clients   map[string]map[string]any
	Filters   []types.FilterGroup
	Operators []types.OperatorSet
	Templates []types.EmailTemplate
	Profiles  []types.Profile
	Statuses  []types.RequestStatus
	Requests  []RecordedRequest

	// Fail maps "METHOD /path" to a status returned instead of the normal
	// response.
	Fail map[string]int

	nextID int
	server *httptest.Server
}

// NewFakeBackend starts a backend that is closed when the test ends.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		Clients: make(map[string]map[string]any),
		Fail:    make(map[string]int),
	}
	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the base URL of the backend.
func (b *FakeBackend) URL() string { return b.server.URL }

// AddClient stores an entity and returns its id.
func (b *FakeBackend) AddClient(values map[string]any) string {
	b.Lock()
	defer b.Unlock()
	return b.addLocked(values)
}

// Client returns a copy of the stored entity.
func (b *FakeBackend) Client(id string) (map[string]any, bool) {
	b.Lock()
	defer b.Unlock()
	v, ok := b.Clients[id]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out, true
}

// Recorded returns the requests matching method and path.
func (b *FakeBackend) Recorded(method, path string) []RecordedRequest {
	b.Lock()
	defer b.Unlock()
	var out []RecordedRequest
	for _, r := range b.Requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (b *FakeBackend) addLocked(values map[string]any) string {
	b.nextID++
	id := strconv.Itoa(b.nextID)
	v := make(map[string]any, len(values))
	for k, val := range values {
		v[k] = val
	}
	b.Clients[id] = v
	return id
}

func (b *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record)
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", b.listClients)
		r.Post("/", b.createClient)
		r.Get("/fields/", b.getFields)
		r.Put("/fields/", b.putFields)
		r.Get("/export/", b.export)
		r.Post("/import/", b.importClients)
		r.Get("/filters/", b.listFilters)
		r.Post("/filters/", b.createFilter)
		r.Put("/filters/", b.updateFilter)
		r.Delete("/filters/", b.deleteFilter)
		r.Get("/filter-options/", b.filterOptions)
		r.Get("/{id}/", b.getClient)
		r.Put("/{id}/", b.updateClient)
		r.Delete("/{id}/", b.deleteClient)
	})
	r.Route("/crm", func(r chi.Router) {
		r.Get("/template/", b.listTemplates)
		r.Delete("/template/", b.deleteTemplate)
		r.Post("/template-clone/", b.cloneTemplate)
		r.Get("/netfree-categories-profile/", b.listProfiles)
		r.Get("/request-status/", b.listStatuses)
		r.Post("/request-status/", b.createStatus)
		r.Put("/request-status/{id}/", b.updateStatus)
		r.Delete("/request-status/{id}/", b.deleteStatus)
	})
	return r
}

// record logs the request, enforces the token and applies Fail.
func (b *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		b.Lock()
		b.Requests = append(b.Requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		status := b.Fail[r.Method+" "+r.URL.Path]
		token := b.Token
		b.Unlock()

		if token != "" && r.Header.Get("Authorization") != "Token "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid token"})
			return
		}
		if status != 0 {
			writeJSON(w, status, map[string]string{"error": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (b *FakeBackend) row(id string) map[string]any {
	out := map[string]any{"id": json.Number(id)}
	for k, v := range b.Clients[id] {
		out[k] = v
	}
	return out
}

func (b *FakeBackend) sortedIDsLocked() []string {
	ids := make([]string, 0, len(b.Clients))
	for id := range b.Clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		c, _ := strconv.Atoi(ids[j])
		return a < c
	})
	return ids
}

func (b *FakeBackend) listClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = types.DefaultPageSize
	}

	b.Lock()
	defer b.Unlock()
	var matched []map[string]any
	for _, id := range b.sortedIDsLocked() {
		if matchesSearch(b.Clients[id], q) {
			matched = append(matched, b.row(id))
		}
	}
	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(matched), "data": matched[start:end]})
}

func matchesSearch(values map[string]any, q url.Values) bool {
	for key := range q {
		slug, ok := strings.CutPrefix(key, "search_")
		if !ok {
			continue
		}
		got := strings.ToLower(fmt.Sprint(values[slug]))
		if !strings.Contains(got, strings.ToLower(q.Get(key))) {
			return false
		}
	}
	return true
}

type payload struct {
	Fields  []map[string]any `json:"fields"`
	Profile any              `json:"netfree_profile"`
}

// profile returns the profile id sent, or "" when absent.
func (p payload) profile() string {
	if p.Profile == nil {
		return ""
	}
	return fmt.Sprint(p.Profile)
}

func (b *FakeBackend) profileExistsLocked(id string) bool {
	for _, p := range b.Profiles {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (p payload) merge(into map[string]any) {
	for _, f := range p.Fields {
		for k, v := range f {
			into[k] = v
		}
	}
}

func (b *FakeBackend) createClient(w http.ResponseWriter, r *http.Request) {
	var p payload
	if err := decodeJSON(r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.Lock()
	defer b.Unlock()
	profile := p.profile()
	if profile == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "netfree_profile is required"})
		return
	}
	if !b.profileExistsLocked(profile) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "netfree_profile not valid"})
		return
	}
	values := map[string]any{types.ProfileKey: json.Number(profile)}
	p.merge(values)
	id := b.addLocked(values)
	writeJSON(w, http.StatusCreated, b.row(id))
}

func (b *FakeBackend) getClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.Lock()
	defer b.Unlock()
	if _, ok := b.Clients[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Client not found"})
		return
	}
	writeJSON(w, http.StatusOK, b.row(id))
}

func (b *FakeBackend) updateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p payload
	if err := decodeJSON(r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.Lock()
	defer b.Unlock()
	values, ok := b.Clients[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Client not found"})
		return
	}
	if profile := p.profile(); profile != "" {
		if !b.profileExistsLocked(profile) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "netfree_profile not valid"})
			return
		}
		values[types.ProfileKey] = json.Number(profile)
	}
	p.merge(values)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (b *FakeBackend) deleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.Lock()
	defer b.Unlock()
	if _, ok := b.Clients[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Client not found"})
		return
	}
	delete(b.Clients, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *FakeBackend) getFields(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"result": b.Blocks})
}

func (b *FakeBackend) putFields(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Fields []struct {
			ID      string `json:"id"`
			Display bool   `json:"display"`
		} `json:"fields"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid data format"})
		return
	}
	b.Lock()
	defer b.Unlock()
	for _, flag := range body.Fields {
		found := false
		for i := range b.Blocks {
			for j := range b.Blocks[i].Fields {
				if b.Blocks[i].Fields[j].ID == flag.ID {
					b.Blocks[i].Fields[j].Display = flag.Display
					found = true
				}
			}
		}
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Field not found"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"data": "Fields updated"})
}

// export writes displayed fields as CSV columns, labelled by display name.
func (b *FakeBackend) export(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	var fields []types.FieldDescriptor
	for _, blk := range b.Blocks {
		for _, f := range blk.Fields {
			if f.Display {
				fields = append(fields, f)
			}
		}
	}
	w.Header().Set("Content-Type", "text/csv")
	cw := csv.NewWriter(w)
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.DisplayName
	}
	_ = cw.Write(header)
	for _, id := range b.sortedIDsLocked() {
		rec := make([]string, len(fields))
		for i, f := range fields {
			if v, ok := b.Clients[id][f.Slug]; ok && v != nil {
				rec[i] = fmt.Sprint(v)
			}
		}
		_ = cw.Write(rec)
	}
	cw.Flush()
}

func (b *FakeBackend) importClients(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rows []map[string]any `json:"clientsData"`
	}
	if err := decodeJSON(r, &body); err != nil || len(body.Rows) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No data"})
		return
	}
	b.Lock()
	defer b.Unlock()
	for _, row := range body.Rows {
		b.addLocked(row)
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "CSV file uploaded successfully"})
}

type filterBody struct {
	GroupID   string                  `json:"filter_group_id"`
	Name      string                  `json:"filter_name"`
	IsDefault bool                    `json:"fg_default"`
	Filters   []types.FilterCondition `json:"filters"`
}

func (b *FakeBackend) listFilters(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	groups := b.Filters
	if groups == nil {
		groups = []types.FilterGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (b *FakeBackend) createFilter(w http.ResponseWriter, r *http.Request) {
	var body filterBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.Lock()
	defer b.Unlock()
	b.nextID++
	g := types.FilterGroup{
		ID:         strconv.Itoa(b.nextID),
		Name:       body.Name,
		IsDefault:  body.IsDefault,
		Conditions: body.Filters,
	}
	b.Filters = append(b.Filters, g)
	writeJSON(w, http.StatusCreated, g)
}

func (b *FakeBackend) updateFilter(w http.ResponseWriter, r *http.Request) {
	var body filterBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.Lock()
	defer b.Unlock()
	for i := range b.Filters {
		if b.Filters[i].ID == body.GroupID {
			b.Filters[i].Name = body.Name
			b.Filters[i].IsDefault = body.IsDefault
			b.Filters[i].Conditions = body.Filters
			writeJSON(w, http.StatusOK, b.Filters[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "filter group not found"})
}

func (b *FakeBackend) deleteFilter(w http.ResponseWriter, r *http.Request) {
	var body filterBody
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.Lock()
	defer b.Unlock()
	for i := range b.Filters {
		if b.Filters[i].ID == body.GroupID {
			b.Filters = append(b.Filters[:i], b.Filters[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "filter group not found"})
}

func (b *FakeBackend) filterOptions(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	writeJSON(w, http.StatusOK, b.Operators)
}

func (b *FakeBackend) listTemplates(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": b.Templates})
}

func (b *FakeBackend) templateIndexLocked(id string) int {
	for i, t := range b.Templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (b *FakeBackend) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	i := b.templateIndexLocked(r.URL.Query().Get("id"))
	if i < 0 {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Invalid template id"})
		return
	}
	b.Templates = append(b.Templates[:i], b.Templates[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Template removed successfully"})
}

func (b *FakeBackend) cloneTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	_ = decodeJSON(r, &body)
	b.Lock()
	defer b.Unlock()
	i := b.templateIndexLocked(body.ID)
	if i < 0 {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Invalid template id"})
		return
	}
	b.nextID++
	clone := b.Templates[i]
	clone.ID = strconv.Itoa(b.nextID)
	clone.Name += "-copy"
	b.Templates = append(b.Templates, clone)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Template cloned successfully"})
}

func (b *FakeBackend) listProfiles(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	profiles := b.Profiles
	if profiles == nil {
		profiles = []types.Profile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": profiles})
}

func (b *FakeBackend) listStatuses(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	statuses := b.Statuses
	if statuses == nil {
		statuses = []types.RequestStatus{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": statuses})
}

// decodeStatus reads a {"name": ...} body, rejecting short names the way
// the backend serializer does.
func decodeStatus(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return "", false
	}
	if len([]rune(strings.TrimSpace(body.Name))) < types.RequestStatusMinName {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"name": {"Ensure this field has at least 3 characters."}})
		return "", false
	}
	return body.Name, true
}

func (b *FakeBackend) statusIndexLocked(id string) int {
	for i, s := range b.Statuses {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (b *FakeBackend) createStatus(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	b.Lock()
	defer b.Unlock()
	b.nextID++
	s := types.RequestStatus{ID: strconv.Itoa(b.nextID), Name: name}
	b.Statuses = append(b.Statuses, s)
	writeJSON(w, http.StatusCreated, s)
}

func (b *FakeBackend) updateStatus(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeStatus(w, r)
	if !ok {
		return
	}
	b.Lock()
	defer b.Unlock()
	i := b.statusIndexLocked(chi.URLParam(r, "id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Status not found"})
		return
	}
	b.Statuses[i].Name = name
	writeJSON(w, http.StatusOK, b.Statuses[i])
}

func (b *FakeBackend) deleteStatus(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	defer b.Unlock()
	i := b.statusIndexLocked(chi.URLParam(r, "id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Status not found"})
		return
	}
	b.Statuses = append(b.Statuses[:i], b.Statuses[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}
