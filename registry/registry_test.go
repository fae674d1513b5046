package registry

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/memory"

	"github.com/meigma/jsystem/cache"
	"github.com/meigma/jsystem/index"
	"github.com/meigma/jsystem/rarc"
	"github.com/meigma/jsystem/yaz0"
)

const testRef = "registry.example.com/stages/title:v1"

func sampleTree() *rarc.Dir {
	return rarc.NewDir("title",
		rarc.NewFile("banner.bti", bytes.Repeat([]byte{0x12, 0x34}, 300)),
		rarc.NewDir("jmp",
			rarc.NewFile("ObjInfo", []byte("obj info table")),
			rarc.NewDir("empty"),
		),
		rarc.NewFile("empty.bin", nil),
	)
}

// recordingTarget records the media types of fetched blobs.
type recordingTarget struct {
	oras.Target

	mu      sync.Mutex
	fetched []string
}

func (r *recordingTarget) Fetch(ctx context.Context, desc ocispec.Descriptor) (io.ReadCloser, error) {
	r.mu.Lock()
	r.fetched = append(r.fetched, desc.MediaType)
	r.mu.Unlock()
	return r.Target.Fetch(ctx, desc)
}

func (r *recordingTarget) Fetched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fetched...)
}

func TestPushPullRoundTrip(t *testing.T) {
	t.Parallel()

	for _, comp := range []Compression{CompressionNone, CompressionYaz0, CompressionZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			c := NewClient(WithTarget(memory.New()))

			desc, err := c.Push(ctx, testRef, sampleTree(), PushWithCompression(comp))
			require.NoError(t, err)
			assert.Equal(t, ocispec.MediaTypeImageManifest, desc.MediaType)

			a, err := c.Pull(ctx, testRef)
			require.NoError(t, err)
			assert.True(t, sampleTree().Equal(a.Root))
			assert.Equal(t, comp, a.Manifest.Compression())
			assert.Equal(t, comp.MediaType(), a.Manifest.DataDescriptor().MediaType)
			assert.Equal(t, desc.Digest, a.Manifest.Descriptor().Digest)
			assert.Equal(t, comp != CompressionNone, a.Index.Compressed())
			assert.Equal(t, "title", a.Index.RootName())
			assert.False(t, a.Manifest.Created().IsZero())

			e, ok := a.Index.Lookup("jmp/ObjInfo")
			require.True(t, ok)
			assert.Equal(t, index.KindFile, e.Kind())
			assert.Equal(t, digest.FromString("obj info table"), e.Digest())
		})
	}
}

func TestPushCompressesLayer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()
	c := NewClient(WithTarget(store))

	_, err := c.Push(ctx, testRef, sampleTree(), PushWithCompression(CompressionYaz0))
	require.NoError(t, err)

	res, err := c.Inspect(ctx, testRef)
	require.NoError(t, err)
	layer, err := content.FetchAll(ctx, store, res.Manifest.DataDescriptor())
	require.NoError(t, err)
	assert.True(t, yaz0.IsCompressed(layer))
}

func TestPushWithTagsAndAnnotations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()
	c := NewClient(WithTarget(store))

	desc, err := c.Push(ctx, testRef, sampleTree(),
		PushWithTags("latest", "stable"),
		PushWithAnnotations(map[string]string{"org.example.stage": "title"}),
	)
	require.NoError(t, err)

	for _, tag := range []string{"v1", "latest", "stable"} {
		got, err := store.Resolve(ctx, tag)
		require.NoError(t, err, tag)
		assert.Equal(t, desc.Digest, got.Digest, tag)
	}

	res, err := c.Inspect(ctx, "registry.example.com/stages/title:latest")
	require.NoError(t, err)
	assert.Equal(t, "title", res.Manifest.Annotations()["org.example.stage"])
}

func TestPushSharesLayers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewClient(WithTarget(memory.New()))

	first, err := c.Push(ctx, testRef, sampleTree())
	require.NoError(t, err)
	second, err := c.Push(ctx, "registry.example.com/stages/title:v2", sampleTree())
	require.NoError(t, err)

	a, err := c.Inspect(ctx, testRef)
	require.NoError(t, err)
	b, err := c.Inspect(ctx, "registry.example.com/stages/title:v2")
	require.NoError(t, err)
	assert.Equal(t, a.Manifest.DataDescriptor(), b.Manifest.DataDescriptor())
	assert.NotEmpty(t, first.Digest)
	assert.NotEmpty(t, second.Digest)
}

func TestPushWithCachedEncoder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := cache.NewMemory()
	c := NewClient(WithTarget(memory.New()), WithYaz0Encoder(yaz0.NewEncoder(yaz0.WithCache(mem))))

	_, err := c.Push(ctx, testRef, sampleTree(), PushWithCompression(CompressionYaz0))
	require.NoError(t, err)
	_, err = c.Push(ctx, "registry.example.com/stages/title:v2", sampleTree(), PushWithCompression(CompressionYaz0))
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Len())
}

func TestPushInvalidReference(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewClient(WithTarget(memory.New()))

	tests := []string{
		"registry.example.com/stages/title",
		"registry.example.com/stages/title@" + digest.FromString("x").String(),
		"not a reference",
	}
	for _, ref := range tests {
		_, err := c.Push(ctx, ref, sampleTree())
		require.ErrorIs(t, err, ErrInvalidReference, ref)
	}
}

func TestPushInvalidTree(t *testing.T) {
	t.Parallel()
	c := NewClient(WithTarget(memory.New()))

	_, err := c.Push(context.Background(), testRef, rarc.NewDir("root", rarc.NewFile("a/b", nil)))
	require.ErrorIs(t, err, rarc.ErrInvalidName)
}

func TestPullNotFound(t *testing.T) {
	t.Parallel()
	c := NewClient(WithTarget(memory.New()))

	_, err := c.Pull(context.Background(), testRef)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Inspect(context.Background(), "registry.example.com/stages/title")
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestInspectSkipsArchiveLayer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := &recordingTarget{Target: memory.New()}
	c := NewClient(WithTarget(store))

	_, err := c.Push(ctx, testRef, sampleTree(), PushWithCompression(CompressionZstd))
	require.NoError(t, err)

	res, err := c.Inspect(ctx, testRef)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Index.Len())
	assert.Equal(t, []string{ocispec.MediaTypeImageManifest, MediaTypeIndex}, store.Fetched())
}

// pushRaw pushes an artifact with arbitrary layers and tags it.
func pushRaw(tb testing.TB, store oras.Target, artifactType, tag string, layers map[string][]byte, order ...string) {
	tb.Helper()
	ctx := context.Background()
	var descs []ocispec.Descriptor
	for _, mt := range order {
		desc := content.NewDescriptorFromBytes(mt, layers[mt])
		require.NoError(tb, pushBlob(ctx, store, desc, layers[mt]))
		descs = append(descs, desc)
	}
	desc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, artifactType, oras.PackManifestOptions{Layers: descs})
	require.NoError(tb, err)
	require.NoError(tb, store.Tag(ctx, desc, tag))
}

func TestPullDigestMismatch(t *testing.T) {
	t.Parallel()
	store := memory.New()
	archive, err := rarc.Encode(sampleTree())
	require.NoError(t, err)

	// The index describes a different archive than the one in the layer.
	pushRaw(t, store, ArtifactType, "v1", map[string][]byte{
		MediaTypeIndex: index.Build(sampleTree(), []byte("other"), false),
		MediaTypeRARC:  archive,
	}, MediaTypeIndex, MediaTypeRARC)

	c := NewClient(WithTarget(store))
	_, err = c.Pull(context.Background(), testRef)
	require.ErrorIs(t, err, ErrDigestMismatch)
}

func TestPullInvalidManifest(t *testing.T) {
	t.Parallel()
	archive, err := rarc.Encode(sampleTree())
	require.NoError(t, err)
	idx := index.Build(sampleTree(), archive, false)

	tests := []struct {
		name         string
		artifactType string
		layers       map[string][]byte
		order        []string
		wantErr      error
	}{
		{
			name:         "foreign artifact",
			artifactType: "application/vnd.example.other",
			layers:       map[string][]byte{MediaTypeIndex: idx, MediaTypeRARC: archive},
			order:        []string{MediaTypeIndex, MediaTypeRARC},
			wantErr:      ErrInvalidManifest,
		},
		{
			name:         "missing index",
			artifactType: ArtifactType,
			layers:       map[string][]byte{MediaTypeRARC: archive},
			order:        []string{MediaTypeRARC},
			wantErr:      ErrMissingIndex,
		},
		{
			name:         "missing data",
			artifactType: ArtifactType,
			layers:       map[string][]byte{MediaTypeIndex: idx},
			order:        []string{MediaTypeIndex},
			wantErr:      ErrMissingData,
		},
		{
			name:         "extra layer",
			artifactType: ArtifactType,
			layers:       map[string][]byte{MediaTypeIndex: idx, MediaTypeRARC: archive, "text/plain": []byte("x")},
			order:        []string{MediaTypeIndex, MediaTypeRARC, "text/plain"},
			wantErr:      ErrInvalidManifest,
		},
		{
			name:         "corrupt index",
			artifactType: ArtifactType,
			layers:       map[string][]byte{MediaTypeIndex: []byte("garbage"), MediaTypeRARC: archive},
			order:        []string{MediaTypeIndex, MediaTypeRARC},
			wantErr:      ErrInvalidManifest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := memory.New()
			pushRaw(t, store, tt.artifactType, "v1", tt.layers, tt.order...)

			_, err := NewClient(WithTarget(store)).Pull(context.Background(), testRef)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPullLayerLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.New()
	_, err := NewClient(WithTarget(store)).Push(ctx, testRef, sampleTree())
	require.NoError(t, err)

	_, err = NewClient(WithTarget(store), WithMaxLayerSize(16)).Pull(ctx, testRef)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestParseCompression(t *testing.T) {
	t.Parallel()

	for _, c := range []Compression{CompressionNone, CompressionYaz0, CompressionZstd} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("lzma")
	require.Error(t, err)
	assert.Equal(t, "compression(9)", Compression(9).String())
}

func TestStaticCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := StaticCredentials("https://registry.example.com:5000/v2/", "mario", "peach")

	cred, err := store.Get(ctx, "registry.example.com:5000")
	require.NoError(t, err)
	assert.Equal(t, "mario", cred.Username)
	assert.Equal(t, "peach", cred.Password)

	cred, err = store.Get(ctx, "other.example.com")
	require.NoError(t, err)
	assert.Empty(t, cred.Username)

	require.Error(t, store.Put(ctx, "x", cred))
	require.Error(t, store.Delete(ctx, "x"))
}
