package configs

import (
	"fmt"
	"sort"
	"time"

	"cuelang.org/go/cue"
)

// Deployment describes the components of a process and how they connect.
type Deployment struct {
	Process         string
	LogLevel        string
	MetricsInterval time.Duration
	Listen          string
	CollectorDB     string
	Components      []ComponentSpec
	Connections     []ConnectionSpec
	Peers           map[string]string
}

type ComponentSpec struct {
	Name   string
	Type   string
	Config ComponentConfig
}

type ConnectionSpec struct {
	Consumer string `json:"consumer"`
	Required string `json:"required"`
	Provider string `json:"provider"`
	Provided string `json:"provided"`
	Deferred bool   `json:"deferred"`
}

// ComponentConfig is the config block of one component. Decoding a missing
// block leaves the target untouched.
type ComponentConfig struct {
	value cue.Value
}

func (c ComponentConfig) Decode(target any) error {
	if !c.value.Exists() {
		return nil
	}
	return c.value.Decode(target)
}

func (c ComponentConfig) Exists() bool {
	return c.value.Exists()
}

// LoadDeployment reads the deployment from loader. Scalars come from the
// first file defining them; components of all files are merged, earlier
// files winning on name clashes.
func LoadDeployment(loader Loader) (*Deployment, error) {
	if err := loader.Err(); err != nil {
		return nil, err
	}
	d := &Deployment{
		Process:     First[string](loader, "process"),
		LogLevel:    First[string](loader, "log_level"),
		Listen:      First[string](loader, "listen"),
		CollectorDB: First[string](loader, "collector_db"),
		Peers:       make(map[string]string),
	}

	if s := First[string](loader, "metrics_interval"); s != "" {
		interval, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("%w: metrics_interval: %w", ErrBadDeployment, err)
		}
		d.MetricsInterval = interval
	}

	seen := make(map[string]bool)
	for value, err := range loader.IterCueValues("components") {
		if err != nil {
			return nil, err
		}
		iter, err := value.Fields()
		if err != nil {
			return nil, err
		}
		var specs []ComponentSpec
		for iter.Next() {
			name := iter.Selector().Unquoted()
			if seen[name] {
				continue
			}
			seen[name] = true
			var typeName string
			if err := iter.Value().LookupPath(cue.ParsePath("type")).Decode(&typeName); err != nil {
				return nil, fmt.Errorf("%w: type of %s: %w", ErrBadDeployment, name, err)
			}
			specs = append(specs, ComponentSpec{
				Name: name,
				Type: typeName,
				Config: ComponentConfig{
					value: iter.Value().LookupPath(cue.ParsePath("config")),
				},
			})
		}
		d.Components = append(d.Components, specs...)
	}

	for conns, err := range All[[]ConnectionSpec](loader, "connections") {
		if err != nil {
			return nil, err
		}
		d.Connections = append(d.Connections, conns...)
	}

	for peers, err := range All[map[string]string](loader, "peers") {
		if err != nil {
			return nil, err
		}
		for name, addr := range peers {
			if _, ok := d.Peers[name]; !ok {
				d.Peers[name] = addr
			}
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks that connections refer to declared components.
func (d *Deployment) Validate() error {
	names := make(map[string]bool)
	for _, c := range d.Components {
		names[c.Name] = true
	}
	for _, conn := range d.Connections {
		if !names[conn.Consumer] {
			return fmt.Errorf("%w: unknown consumer %s", ErrBadDeployment, conn.Consumer)
		}
		if !names[conn.Provider] {
			return fmt.Errorf("%w: unknown provider %s", ErrBadDeployment, conn.Provider)
		}
	}
	return nil
}

func (d *Deployment) ComponentNames() []string {
	ret := make([]string, 0, len(d.Components))
	for _, c := range d.Components {
		ret = append(ret, c.Name)
	}
	sort.Strings(ret)
	return ret
}
