// internal/imagesize/registry.go
//
// Image-size registry.
//
// Context
// -------
// The theme declares named crop sizes ("primer-featured", "primer-hero").
// Configure runs the raw declarations through the `image_sizes` filter so
// plugins can add, remove, or override entries, and only then validates
// and applies defaults.  A plugin therefore cannot slip a size past the
// width/height requirement.
//
// Survivors are published to the rendering surface under their sanitized
// key, and the key is the registry's identity: "Hero" and "hero" are the
// same size, and the later declaration wins at the earlier position.  When at least one survives, a label lookup is attached to the
// `image_size_names_choose` filter for the size picker.
//
// Notes
// -----
//   - Malformed entries are dropped and logged at debug.  Configure never
//     fails as a whole; partial success is the contract.
//   - Height Unconstrained (9999) means "scale to width".
package imagesize

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/metrics"
	"github.com/yanizio/primer/internal/naming"
)

// Unconstrained is the height sentinel for sizes that only bound width.
const Unconstrained = 9999

// LabelFilterID is the callback identity attached to
// image_size_names_choose.
const LabelFilterID = "primer_image_size_names_choose"

// Input is one raw declaration.  Zero values mean "absent".
type Input struct {
	Name   string `yaml:"name"   validate:"required"`
	Width  int    `yaml:"width"  validate:"gt=0"`
	Height int    `yaml:"height" validate:"gt=0"`
	Crop   Crop   `yaml:"crop"`
	Label  string `yaml:"label"`
}

// Spec is a validated, defaulted size.
type Spec struct {
	Name   string // as declared
	Key    string // sanitized key used with the surface
	Width  int
	Height int
	Crop   Crop
	Label  string
}

// Surface is the rendering side that actually produces resized images.
type Surface interface {
	AddImageSize(name string, width, height int, crop Crop)
}

// Registry owns the configured sizes.  Safe for concurrent reads after
// Configure.
type Registry struct {
	hooks   *hook.Registry
	surface Surface
	log     *zap.Logger
	v       *validator.Validate

	mu    sync.RWMutex
	specs map[string]Spec
	order []string
}

// New returns an empty registry bound to hooks and surface.
func New(hooks *hook.Registry, surface Surface, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		hooks:   hooks,
		surface: surface,
		log:     log.Named("imagesize"),
		v:       validator.New(),
		specs:   map[string]Spec{},
	}
}

// Configure filters, validates, defaults, and registers sizes.  It returns
// the survivors keyed by sanitized key.
func (r *Registry) Configure(sizes []Input) map[string]Spec {
	raw := append([]Input(nil), sizes...)
	raw = hook.FilterAs(r.hooks, hook.ImageSizes, raw)

	specs := make(map[string]Spec, len(raw))
	var order []string
	for _, in := range raw {
		spec, ok := r.normalize(in)
		if !ok {
			continue
		}
		if prev, dup := specs[spec.Key]; !dup {
			order = append(order, spec.Key)
		} else {
			r.log.Debug("image size redeclared",
				zap.String("key", spec.Key),
				zap.String("previous", prev.Name),
				zap.String("name", spec.Name))
		}
		specs[spec.Key] = spec
	}

	for _, key := range order {
		s := specs[key]
		if r.surface != nil {
			r.surface.AddImageSize(s.Key, s.Width, s.Height, s.Crop)
		}
		r.log.Debug("image size registered",
			zap.String("name", s.Key),
			zap.Int("width", s.Width),
			zap.Int("height", s.Height),
			zap.Stringer("crop", s.Crop))
	}

	r.mu.Lock()
	r.specs = specs
	r.order = order
	r.mu.Unlock()

	if len(specs) > 0 {
		_, err := r.hooks.AddFilter(hook.ImageSizeNamesChoose, LabelFilterID,
			hook.FilterFunc(r.mergeLabels))
		if err != nil {
			r.log.Warn("label filter not attached", zap.Error(err))
		}
	}

	out := make(map[string]Spec, len(specs))
	for k, v := range specs {
		out[k] = v
	}
	return out
}

func (r *Registry) normalize(in Input) (Spec, bool) {
	if err := r.v.Struct(in); err != nil {
		r.drop(in, err.Error())
		return Spec{}, false
	}
	key := naming.SanitizeKey(in.Name)
	if key == "" {
		r.drop(in, "name has no key-safe characters")
		return Spec{}, false
	}

	label := in.Label
	if label == "" {
		label = naming.Humanize(in.Name)
	}
	return Spec{
		Name:   in.Name,
		Key:    key,
		Width:  in.Width,
		Height: in.Height,
		Crop:   in.Crop,
		Label:  label,
	}, true
}

func (r *Registry) drop(in Input, reason string) {
	metrics.DeclarationsDroppedTotal.WithLabelValues("image_size").Inc()
	r.log.Debug("image size dropped",
		zap.String("name", in.Name),
		zap.Int("width", in.Width),
		zap.Int("height", in.Height),
		zap.String("reason", reason))
}

// mergeLabels adds this registry's labels to names without overwriting
// keys that are already present.
func (r *Registry) mergeLabels(names map[string]string) map[string]string {
	labels := r.Labels()
	out := make(map[string]string, len(names)+len(labels))
	for k, v := range names {
		out[k] = v
	}
	for k, v := range labels {
		if _, taken := out[k]; !taken {
			out[k] = v
		}
	}
	return out
}

// Labels returns {key: label} for every configured size.
func (r *Registry) Labels() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.specs))
	for _, s := range r.specs {
		out[s.Key] = s.Label
	}
	return out
}

// Lookup returns the spec whose key matches name once sanitized.
func (r *Registry) Lookup(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[naming.SanitizeKey(name)]
	return s, ok
}

// Names lists configured size keys in declaration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
