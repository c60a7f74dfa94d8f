// Package ocirepo publishes packages as OCI artifacts. Each package becomes
// one manifest with the module descriptor as config and one layer per
// distinct archive. Manifests are tagged <artifactName>_<version>.
package ocirepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	specs "github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"

	"git.fractalqb.de/fractalqb/srcset/srcsetkore"
)

const (
	ArtifactType     = "application/vnd.srcset.package.v1"
	ModuleMediaType  = "application/vnd.srcset.module.v1+json"
	ArchiveMediaType = "application/java-archive"
)

var ErrNotAPackage = errors.New("not a srcset package")

// Repository stores packages in an OCI target.
type Repository struct {
	Target oras.Target
	Trace  *srcsetkore.Trace

	// ReadArchive reads the content of an archive. If nil, the file at the
	// artifact's location is read.
	ReadArchive func(a *srcsetkore.Artifact) ([]byte, error)
}

func New(target oras.Target, tr *srcsetkore.Trace) *Repository {
	return &Repository{Target: target, Trace: tr}
}

// NewMemory creates a repository that only lives in memory.
func NewMemory(tr *srcsetkore.Trace) *Repository {
	return New(memory.New(), tr)
}

// OpenLayout opens or creates an OCI image layout in dir.
func OpenLayout(dir string, tr *srcsetkore.Trace) (*Repository, error) {
	store, err := oci.New(dir)
	if err != nil {
		return nil, fmt.Errorf("open OCI layout '%s': %w", dir, err)
	}
	return New(store, tr), nil
}

// OpenRemote connects to the registry repository ref, e.g.
// "ghcr.io/example/audio". Credentials come from the docker configuration.
func OpenRemote(ref string, plainHTTP bool, tr *srcsetkore.Trace) (*Repository, error) {
	repo, err := remote.NewRepository(ref)
	if err != nil {
		return nil, fmt.Errorf("remote repository '%s': %w", ref, err)
	}
	repo.PlainHTTP = plainHTTP
	repo.Client = auth.DefaultClient
	return New(repo, tr), nil
}

// Tag returns the tag under which pkg is stored.
func Tag(pkg *srcsetkore.Package) string {
	return pkg.ArtifactName + "_" + pkg.Version.String()
}

// Push stores pkg and returns the descriptor of its manifest. Pushing the
// same package again overwrites the tag.
func (r *Repository) Push(ctx context.Context, pkg *srcsetkore.Package) (ocispec.Descriptor, error) {
	var (
		layers []ocispec.Descriptor
		pushed = make(map[*srcsetkore.Artifact]File)
		mod    = Module{
			FormatVersion: ModuleFormatVersion,
			Group:         pkg.Group,
			Name:          pkg.ArtifactName,
			Version:       pkg.Version.String(),
			Release:       pkg.Version.IsRelease(),
			Meta:          moduleMeta(pkg.Meta),
		}
	)
	for _, v := range pkg.Variants {
		f, ok := pushed[v.Artifact]
		if !ok {
			desc, err := r.pushArchive(ctx, v.Artifact)
			if err != nil {
				return ocispec.Descriptor{}, fmt.Errorf("push %s: %w", pkg, err)
			}
			layers = append(layers, desc)
			f = File{
				Name:   v.Artifact.FileName(),
				Size:   desc.Size,
				Digest: desc.Digest,
			}
			pushed[v.Artifact] = f
		}
		mod.Variants = append(mod.Variants, Variant{
			Name:       v.Name,
			Attributes: variantAttributes(v.Kind),
			Files:      []File{f},
		})
	}
	modData, err := json.Marshal(&mod)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	cfgDesc, err := r.pushBlob(ctx, ModuleMediaType, modData)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push module of %s: %w", pkg, err)
	}
	manData, err := json.Marshal(&ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Config:       cfgDesc,
		Layers:       layers,
		Annotations:  annotations(pkg),
	})
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	manDesc, err := r.pushBlob(ctx, ocispec.MediaTypeImageManifest, manData)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push manifest of %s: %w", pkg, err)
	}
	manDesc.ArtifactType = ArtifactType
	tag := Tag(pkg)
	if err := r.Target.Tag(ctx, manDesc, tag); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("tag %s: %w", tag, err)
	}
	r.Trace.Info("pushed `package` as `tag` with `digest`",
		`package`, pkg.Coordinates(),
		`tag`, tag,
		`digest`, manDesc.Digest.String(),
	)
	return manDesc, nil
}

// PushAll pushes all packages in order and stops at the first error.
func (r *Repository) PushAll(ctx context.Context, pkgs []*srcsetkore.Package) error {
	for _, pkg := range pkgs {
		if _, err := r.Push(ctx, pkg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) pushArchive(ctx context.Context, a *srcsetkore.Artifact) (ocispec.Descriptor, error) {
	read := r.ReadArchive
	if read == nil {
		read = func(a *srcsetkore.Artifact) ([]byte, error) { return os.ReadFile(a.Location()) }
	}
	data, err := read(a)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	desc, err := r.pushBlob(ctx, ArchiveMediaType, data)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	desc.Annotations = map[string]string{ocispec.AnnotationTitle: a.FileName()}
	r.Trace.Debug("pushed `archive` with `digest`", `archive`, a.FileName(), `digest`, desc.Digest.String())
	return desc, nil
}

// pushBlob stores data unless the target already has it. Identical archives
// and unchanged packages can be pushed again this way.
func (r *Repository) pushBlob(ctx context.Context, mediaType string, data []byte) (ocispec.Descriptor, error) {
	desc := content.NewDescriptorFromBytes(mediaType, data)
	switch ok, err := r.Target.Exists(ctx, desc); {
	case err != nil:
		return desc, err
	case ok:
		return desc, nil
	}
	return oras.PushBytes(ctx, r.Target, mediaType, data)
}

func annotations(pkg *srcsetkore.Package) map[string]string {
	res := map[string]string{
		ocispec.AnnotationTitle:   pkg.Coordinates(),
		ocispec.AnnotationVersion: pkg.Version.String(),
	}
	set := func(key, val string) {
		if val != "" {
			res[key] = val
		}
	}
	set(ocispec.AnnotationDescription, pkg.Meta.Description)
	set(ocispec.AnnotationURL, pkg.Meta.URL)
	set(ocispec.AnnotationLicenses, pkg.Meta.License.Name)
	set(ocispec.AnnotationSource, pkg.Meta.SCM.URL)
	var authors []string
	for _, a := range pkg.Meta.Authors {
		authors = append(authors, author(a))
	}
	set(ocispec.AnnotationAuthors, strings.Join(authors, ", "))
	return res
}

// Fetch reads the module descriptor of the package tagged ref.
func (r *Repository) Fetch(ctx context.Context, ref string) (*Module, ocispec.Manifest, error) {
	var man ocispec.Manifest
	_, data, err := oras.FetchBytes(ctx, r.Target, ref, oras.DefaultFetchBytesOptions)
	if err != nil {
		return nil, man, fmt.Errorf("fetch '%s': %w", ref, err)
	}
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, man, fmt.Errorf("manifest of '%s': %w", ref, err)
	}
	if man.ArtifactType != ArtifactType || man.Config.MediaType != ModuleMediaType {
		return nil, man, fmt.Errorf("'%s': %w", ref, ErrNotAPackage)
	}
	modData, err := content.FetchAll(ctx, r.Target, man.Config)
	if err != nil {
		return nil, man, fmt.Errorf("module of '%s': %w", ref, err)
	}
	mod := new(Module)
	if err := json.Unmarshal(modData, mod); err != nil {
		return nil, man, fmt.Errorf("module of '%s': %w", ref, err)
	}
	return mod, man, nil
}

// FetchArchive reads the archive backing the variant of the package tagged
// ref.
func (r *Repository) FetchArchive(ctx context.Context, ref, variant string) ([]byte, error) {
	mod, man, err := r.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	v := mod.Variant(variant)
	if v == nil || len(v.Files) == 0 {
		return nil, fmt.Errorf("package '%s' has no variant '%s'", ref, variant)
	}
	f := v.Files[0]
	for _, l := range man.Layers {
		if l.Digest == f.Digest {
			data, err := content.FetchAll(ctx, r.Target, l)
			if err != nil {
				return nil, err
			}
			v := f.Digest.Verifier()
			v.Write(data)
			if !v.Verified() {
				return nil, fmt.Errorf("archive '%s' does not match %s", f.Name, f.Digest)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("package '%s' has no layer for '%s'", ref, f.Name)
}
