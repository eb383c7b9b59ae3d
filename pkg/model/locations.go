package model

// Locations is the set of inferred layout paths under one extracted pack
// root, built once by the Layout Prober.
type Locations struct {
	Root string

	// Bedrock visual asset directories.
	Animations map[string]bool
	Models     map[string]bool
	Posers     map[string]bool
	Resolvers  map[string]bool // assets/*/bedrock/pokemon/resolvers (or "species" convention)

	Lang          map[string]bool
	Textures      map[string]bool
	Sounds        map[string]bool
	SoundsJSON    string // path to assets/*/sounds.json, if present

	Species                   map[string]bool
	SpeciesAdditions          map[string]bool
	SpawnPoolWorld            map[string]bool
	SpeciesFeatures           map[string]bool
	SpeciesFeatureAssignments map[string]bool
}

// NewLocations allocates an empty Locations rooted at root.
func NewLocations(root string) *Locations {
	return &Locations{
		Root:                      root,
		Animations:                map[string]bool{},
		Models:                    map[string]bool{},
		Posers:                    map[string]bool{},
		Resolvers:                 map[string]bool{},
		Lang:                      map[string]bool{},
		Textures:                  map[string]bool{},
		Sounds:                    map[string]bool{},
		Species:                   map[string]bool{},
		SpeciesAdditions:          map[string]bool{},
		SpawnPoolWorld:            map[string]bool{},
		SpeciesFeatures:           map[string]bool{},
		SpeciesFeatureAssignments: map[string]bool{},
	}
}
