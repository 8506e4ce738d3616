package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/dispatcher/internal/model"
)

// LeadInput is a lead as it appears in an intake file. Contact data is
// reduced to completeness flags on the way into a LeadRecord.
type LeadInput struct {
	ID               string          `json:"id" yaml:"id"`
	CompanyName      string          `json:"company_name" yaml:"company_name"`
	OwnerName        string          `json:"owner_name" yaml:"owner_name"`
	MCNumber         string          `json:"mc_number" yaml:"mc_number"`
	DOTNumber        string          `json:"dot_number" yaml:"dot_number"`
	AuthorityGranted string          `json:"authority_granted" yaml:"authority_granted"` // Date; takes precedence over AuthorityAgeDays
	AuthorityAgeDays *int            `json:"authority_age_days" yaml:"authority_age_days"`
	FleetSize        int             `json:"fleet_size" yaml:"fleet_size"`
	Insurance        model.Insurance `json:"insurance" yaml:"insurance"`
	SafetyIndex      *float64        `json:"safety_index" yaml:"safety_index"`
	Equipment        []string        `json:"equipment" yaml:"equipment"`
	Cargo            string          `json:"cargo" yaml:"cargo"` // Used to infer equipment when none is listed
	OperatingStates  []string        `json:"operating_states" yaml:"operating_states"`
	HomeBaseState    string          `json:"home_base_state" yaml:"home_base_state"`
	Phone            string          `json:"phone" yaml:"phone"`
	SecondaryPhone   string          `json:"secondary_phone" yaml:"secondary_phone"`
	Email            string          `json:"email" yaml:"email"`
}

// Ingestor turns intake files into validated records
type Ingestor struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Ingestor
type Option func(*Ingestor)

// WithClock fixes the clock used for authority age
func WithClock(now func() time.Time) Option {
	return func(i *Ingestor) { i.now = now }
}

// WithIDGenerator replaces the uuid generator for records without an ID
func WithIDGenerator(newID func() string) Option {
	return func(i *Ingestor) { i.newID = newID }
}

// New creates an ingestor
func New(opts ...Option) *Ingestor {
	i := &Ingestor{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// LoadLeads reads and normalizes a YAML or JSON list of leads
func (i *Ingestor) LoadLeads(path string) ([]model.LeadRecord, error) {
	inputs, err := decodeFile[LeadInput](path)
	if err != nil {
		return nil, err
	}

	leads := make([]model.LeadRecord, 0, len(inputs))
	for n, in := range inputs {
		lead, err := i.Lead(in)
		if err != nil {
			return nil, fmt.Errorf("lead %d: %w", n, err)
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// Lead normalizes one intake lead into a validated record
func (i *Ingestor) Lead(in LeadInput) (model.LeadRecord, error) {
	lead := model.LeadRecord{
		ID:            strings.TrimSpace(in.ID),
		CompanyName:   strings.TrimSpace(in.CompanyName),
		MCNumber:      NormalizeRegistration(in.MCNumber),
		DOTNumber:     NormalizeRegistration(in.DOTNumber),
		FleetSize:     in.FleetSize,
		Insurance:     in.Insurance,
		SafetyIndex:   in.SafetyIndex,
		HomeBaseState: model.NormalizeCode(in.HomeBaseState),
	}
	if lead.ID == "" {
		lead.ID = i.newID()
	}

	switch {
	case strings.TrimSpace(in.AuthorityGranted) != "":
		granted, ok := ParseDate(in.AuthorityGranted)
		if !ok {
			return model.LeadRecord{}, &model.ValidationError{Field: "authority_granted", Msg: fmt.Sprintf("unrecognized date %q", in.AuthorityGranted)}
		}
		age := int(i.now().Sub(granted).Hours() / 24)
		if age < 0 {
			return model.LeadRecord{}, &model.ValidationError{Field: "authority_granted", Msg: "date is in the future"}
		}
		lead.AuthorityAgeDays = age
	case in.AuthorityAgeDays != nil:
		lead.AuthorityAgeDays = *in.AuthorityAgeDays
	}

	equipment := in.Equipment
	if len(equipment) == 0 && strings.TrimSpace(in.Cargo) != "" {
		equipment = InferEquipment(in.Cargo)
	}
	lead.Equipment = normalizeEquipment(equipment)
	lead.OperatingStates = normalizeCodes(in.OperatingStates)

	_, hasPhone := NormalizePhone(in.Phone)
	_, hasSecondary := NormalizePhone(in.SecondaryPhone)
	_, hasEmail := NormalizeEmail(in.Email)
	lead.Contact = model.Contact{
		HasPhone:          hasPhone,
		HasSecondaryPhone: hasSecondary,
		HasEmail:          hasEmail,
		HasOwnerName:      strings.TrimSpace(in.OwnerName) != "",
	}

	if err := lead.Validate(); err != nil {
		return model.LeadRecord{}, err
	}
	return lead, nil
}

// LoadLoads reads and normalizes a YAML or JSON list of loads
func (i *Ingestor) LoadLoads(path string) ([]model.LoadRecord, error) {
	loads, err := decodeFile[model.LoadRecord](path)
	if err != nil {
		return nil, err
	}

	for n := range loads {
		l := &loads[n]
		if strings.TrimSpace(l.ID) == "" {
			l.ID = i.newID()
		}
		l.Origin = model.NormalizeCode(l.Origin)
		l.Destination = model.NormalizeCode(l.Destination)
		l.Equipment = model.NormalizeEquipment(l.Equipment)
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("load %d: %w", n, err)
		}
	}
	return loads, nil
}

// LoadCarriers reads and normalizes a YAML or JSON list of carriers
func (i *Ingestor) LoadCarriers(path string) ([]model.CarrierRecord, error) {
	carriers, err := decodeFile[model.CarrierRecord](path)
	if err != nil {
		return nil, err
	}

	for n := range carriers {
		c := &carriers[n]
		if strings.TrimSpace(c.ID) == "" {
			c.ID = i.newID()
		}
		c.Equipment = normalizeEquipment(c.Equipment)
		c.PreferredLanes = normalizeCodes(c.PreferredLanes)
		c.HomeBaseStates = normalizeCodes(c.HomeBaseStates)
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("carrier %d: %w", n, err)
		}
	}
	return carriers, nil
}

// decodeFile decodes a top-level list. JSON files use encoding/json so
// RFC 3339 strings land in time.Time fields; everything else is YAML.
func decodeFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var out []T
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return out, nil
}

func normalizeEquipment(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, e := range in {
		n := model.NormalizeEquipment(e)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeCodes(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		n := model.NormalizeCode(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
