// Package model defines the per-entity graph the ingestion pipeline builds
// and the Resolution Engine consumes: Pack -> Entity -> Form/ResolverEntry,
// plus the cross-cutting EvolutionEdge, SoundEntry, and LangEntry records.
//
// A Pack exclusively owns its Entities; an Entity exclusively owns its
// Forms and ResolverEntries. Forms and ResolverEntries hold plain pointer
// back-references to their owning Entity/Pack for display, merge, and
// export queries: cyclic references are resolved with an arena-of-maps
// keyed by the identifiers the algorithms themselves need (internal_name,
// form name, resolver order) rather than raw array indices, since every
// binder resolves references by name, not position.
package model

import "path/filepath"

// FeatureKind is the declared type of a species_features entry.
type FeatureKind int

const (
	FeatureFlag FeatureKind = iota
	FeatureChoice
	FeatureInteger
)

// Feature is a named attribute that may contribute an aspect to a form.
type Feature struct {
	Name         string
	Keys         []string // aliases this feature is also matched by
	Kind         FeatureKind
	IsAspect     bool
	AspectFormat string // template containing "{{choice}}"
}

// MatchesKey reports whether key equals this feature's name or one of its
// aliases.
func (f *Feature) MatchesKey(key string) bool {
	if f.Name == key {
		return true
	}
	for _, k := range f.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// FeatureAssignment records which entity names receive a named feature.
type FeatureAssignment struct {
	Name     string
	Included []string
}

// MergeLevel is the per-field merge completeness of a Form.
type MergeLevel int

const (
	MergeNone MergeLevel = iota
	MergePartial
	MergeFull
)

func (m MergeLevel) String() string {
	switch m {
	case MergeFull:
		return "FULL"
	case MergePartial:
		return "PARTIAL"
	default:
		return "NO"
	}
}

// MergeStatus is the per-form resolution accounting.
type MergeStatus struct {
	SpawnPool        MergeLevel
	Species          MergeLevel
	SpeciesAdditions MergeLevel
}

// SourceRef ties a parsed document back to the file it came from.
type SourceRef struct {
	Path    string
	Payload any // decoded JSON tree (map[string]any or similarly shaped)
}

// ResolverEntry is a visual bundle (models/posers/animations/textures) keyed
// by an integer order, unique within its owning Entity.
type ResolverEntry struct {
	Order   int
	OwnPath string

	Models     map[string]bool
	Posers     map[string]bool
	Animations map[string]bool
	Textures   map[string]bool

	HasShiny bool
	Aspects  map[string]bool

	// RequestedAnimations[group][move] = resolved (true once a matching
	// animation file was found for that reference).
	RequestedAnimations map[string]map[string]bool

	Entity *Entity
	Pack   *Pack
}

// NewResolverEntry allocates a ResolverEntry with initialized sets.
func NewResolverEntry(order int, ownPath string, entity *Entity, pack *Pack) *ResolverEntry {
	return &ResolverEntry{
		Order:               order,
		OwnPath:             ownPath,
		Models:              map[string]bool{},
		Posers:              map[string]bool{},
		Animations:          map[string]bool{},
		Textures:            map[string]bool{},
		Aspects:             map[string]bool{},
		RequestedAnimations: map[string]map[string]bool{},
		Entity:              entity,
		Pack:                pack,
	}
}

// RequestAnimation marks (group, move) as referenced by a poser belonging to
// this resolver; resolved starts false until the Poser/Animation Linker
// finds a matching file.
func (r *ResolverEntry) RequestAnimation(group, move string) {
	if r.RequestedAnimations[group] == nil {
		r.RequestedAnimations[group] = map[string]bool{}
	}
	if _, ok := r.RequestedAnimations[group][move]; !ok {
		r.RequestedAnimations[group][move] = false
	}
}

// HasGraphics reports whether this resolver contributes any visual asset.
func (r *ResolverEntry) HasGraphics() bool {
	return len(r.Models) > 0 || len(r.Posers) > 0 || len(r.Animations) > 0 || len(r.Textures) > 0 || r.HasShiny
}

// Form is a named variant of an Entity.
type Form struct {
	Name    string
	Aspects []string

	ResolverAssignments map[int]bool // keys into Entity.Resolvers

	Species          *SourceRef
	SpeciesAdditions *SourceRef

	SpawnPool map[string]bool // set of spawn file paths

	SoundEntry *SoundEntry

	Status MergeStatus

	Entity *Entity
	Pack   *Pack
}

// NewForm allocates a Form with initialized sets, defaulting Name to
// "base_form" when empty.
func NewForm(name string, entity *Entity, pack *Pack) *Form {
	if name == "" {
		name = BaseFormName
	}
	return &Form{
		Name:                name,
		ResolverAssignments: map[int]bool{},
		SpawnPool:           map[string]bool{},
		Entity:              entity,
		Pack:                pack,
	}
}

// BaseFormName is the always-present default form name.
const BaseFormName = "base_form"

// HasAspect reports whether aspect is present in this form's aspect set.
// Aspect matching is case-sensitive; only form-name matching folds case.
func (f *Form) HasAspect(aspect string) bool {
	for _, a := range f.Aspects {
		if a == aspect {
			return true
		}
	}
	return false
}

// AddAspect appends aspect if not already present.
func (f *Form) AddAspect(aspect string) {
	if !f.HasAspect(aspect) {
		f.Aspects = append(f.Aspects, aspect)
	}
}

// CompStamp is the 9-tuple completeness stamp the CHOOSE engine compares
// packs by.
type CompStamp struct {
	HasSpawn            bool
	HasSpecies          bool
	HasSpeciesAdditions bool
	HasResolver         bool
	HasModel            bool
	HasPoser            bool
	HasAnimation        bool
	HasTexture          bool
	HasShiny            bool
}

// Stamp computes this form's completeness stamp by inspecting its own
// sources plus the resolvers it's assigned to within its Entity.
func (f *Form) Stamp() CompStamp {
	s := CompStamp{
		HasSpawn:            len(f.SpawnPool) > 0,
		HasSpecies:          f.Species != nil,
		HasSpeciesAdditions: f.SpeciesAdditions != nil,
	}
	for order := range f.ResolverAssignments {
		re, ok := f.Entity.Resolvers[order]
		if !ok {
			continue
		}
		s.HasResolver = true
		s.HasModel = s.HasModel || len(re.Models) > 0
		s.HasPoser = s.HasPoser || len(re.Posers) > 0
		s.HasAnimation = s.HasAnimation || len(re.Animations) > 0
		s.HasTexture = s.HasTexture || len(re.Textures) > 0
		s.HasShiny = s.HasShiny || re.HasShiny
	}
	return s
}

// EvolutionEdge is a directed evolution relationship.
type EvolutionEdge struct {
	From       string
	To         string
	SourceFile string
	IsAddition bool
}

// SoundEntry is the sounds attached to one entity.
type SoundEntry struct {
	InternalName string
	Moves        map[string]map[string]bool // move -> set of .ogg paths
	Unassigned   map[string]bool
	Payload      map[string]any
}

// NewSoundEntry allocates an empty SoundEntry.
func NewSoundEntry(internalName string) *SoundEntry {
	return &SoundEntry{
		InternalName: internalName,
		Moves:        map[string]map[string]bool{},
		Unassigned:   map[string]bool{},
	}
}

// AddMoveSound records path under move.
func (s *SoundEntry) AddMoveSound(move, path string) {
	if s.Moves[move] == nil {
		s.Moves[move] = map[string]bool{}
	}
	s.Moves[move][path] = true
}

// LangEntry is one translation file.
type LangEntry struct {
	File        string
	Source      map[string]string
	EntityNames map[string]bool
}

// Entity is one creature identity inside a Pack.
type Entity struct {
	InternalName string
	DisplayName  string
	DexID        int // -1 means unknown

	FeatureNames map[string]bool

	Forms     map[string]*Form // key: lowercased form name
	Resolvers map[int]*ResolverEntry

	Selected  bool
	Merged    bool
	MergePick string // pack display name chosen for graphics, if any

	// Evolution request accounting.
	Requested          int
	RequestTransferred int

	IsPseudoform bool

	SoundEntry *SoundEntry

	Pack *Pack
}

// NewEntity allocates an Entity with its base_form already attached.
func NewEntity(internalName string, pack *Pack) *Entity {
	e := &Entity{
		InternalName: internalName,
		DexID:        -1,
		FeatureNames: map[string]bool{},
		Forms:        map[string]*Form{},
		Resolvers:    map[int]*ResolverEntry{},
		Pack:         pack,
	}
	e.Forms[BaseFormName] = NewForm(BaseFormName, e, pack)
	return e
}

// BaseForm returns the entity's always-present base form.
func (e *Entity) BaseForm() *Form { return e.Forms[BaseFormName] }

// FormOrCreate returns the form named name (case preserved on creation,
// looked up lowercased), creating it if absent.
func (e *Entity) FormOrCreate(name string) *Form {
	key := lowerFormKey(name)
	if f, ok := e.Forms[key]; ok {
		return f
	}
	f := NewForm(name, e, e.Pack)
	e.Forms[key] = f
	return f
}

func lowerFormKey(name string) string {
	if name == "" {
		return BaseFormName
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			r = r - 'A' + 'a'
		}
		out = append(out, r)
	}
	return string(out)
}

// NextResolverOrder computes a fresh, non-colliding negative order:
// min(existing_min, 0) - 1.
func (e *Entity) NextResolverOrder() int {
	min := 0
	for order := range e.Resolvers {
		if order < min {
			min = order
		}
	}
	return min - 1
}

// AddResolver inserts re, reassigning its Order if it collides.
func (e *Entity) AddResolver(re *ResolverEntry) {
	if _, collide := e.Resolvers[re.Order]; collide {
		re.Order = e.NextResolverOrder()
	}
	e.Resolvers[re.Order] = re
}

// ActiveRequest reports whether this entity has an unfulfilled evolution
// request where at least one downstream selected entity exists in the same
// pack.
func (e *Entity) ActiveRequest(downstreamSelected bool) bool {
	remaining := e.Requested - e.RequestTransferred
	return remaining > 0 && downstreamSelected
}

// Pack is one processed source contribution.
type Pack struct {
	DisplayName    string
	ExtractedRoot  string
	Locations      *Locations
	Entities       map[string]*Entity
	Features       map[string]*Feature
	FeatureAssigns map[string]*FeatureAssignment
	Evolutions     []*EvolutionEdge
	Langs          []*LangEntry
	SoundsJSON     map[string]any

	IsBase bool
	IsMod  bool
}

// NewPack allocates an empty Pack rooted at extractedRoot.
func NewPack(displayName, extractedRoot string) *Pack {
	return &Pack{
		DisplayName:    displayName,
		ExtractedRoot:  extractedRoot,
		Entities:       map[string]*Entity{},
		Features:       map[string]*Feature{},
		FeatureAssigns: map[string]*FeatureAssignment{},
	}
}

// EntityOrCreate returns the entity named name, auto-creating a minimal one
// (dex_id -1) if absent; spawn/resolver/sound binders rely on this when a
// reference arrives before that entity's own species file has been seen.
func (p *Pack) EntityOrCreate(name string) *Entity {
	if e, ok := p.Entities[name]; ok {
		return e
	}
	e := NewEntity(name, p)
	p.Entities[name] = e
	return e
}

// AllExportPaths returns the union of every file path this entity's forms
// and resolvers reference, used by the Exporter.
func (e *Entity) AllExportPaths() map[string]bool {
	out := map[string]bool{}
	for _, f := range e.Forms {
		if f.Species != nil {
			out[f.Species.Path] = true
		}
		if f.SpeciesAdditions != nil {
			out[f.SpeciesAdditions.Path] = true
		}
		for p := range f.SpawnPool {
			out[p] = true
		}
	}
	for _, re := range e.Resolvers {
		if re.OwnPath != "" {
			out[re.OwnPath] = true
		}
		for p := range re.Models {
			out[p] = true
		}
		for p := range re.Posers {
			out[p] = true
		}
		for p := range re.Animations {
			out[p] = true
		}
		for p := range re.Textures {
			out[p] = true
		}
	}
	if e.SoundEntry != nil {
		for _, paths := range e.SoundEntry.Moves {
			for p := range paths {
				out[p] = true
			}
		}
		for p := range e.SoundEntry.Unassigned {
			out[p] = true
		}
	}
	return out
}

// StemName returns the filename without extension, used throughout the
// ingestion pipeline to derive internal_name and poser/model/texture keys.
func StemName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
