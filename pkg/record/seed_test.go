package record_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aberic/george/pkg/record"
)

// fakeView is a minimal record.ViewWriter that appends to an in-memory
// buffer, standing in for a real *view.View so Seed can be exercised
// without standing up a ge.File.
type fakeView struct {
	mu   sync.Mutex
	buf  []byte
	vers uint16
}

func (f *fakeView) WriteContent(data []byte) (record.Locator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	offset := uint64(len(f.buf))
	f.buf = append(f.buf, data...)
	return record.Locator{Version: f.vers, Length: uint32(len(data)), Offset: offset}, nil
}

// fakeNode is a minimal record.NodeSink recording every write it receives.
type fakeNode struct {
	mu    sync.Mutex
	path  string
	slots map[int64][]byte
}

func newFakeNode(path string) *fakeNode {
	return &fakeNode{path: path, slots: make(map[int64][]byte)}
}

func (n *fakeNode) Path() string { return n.path }

func (n *fakeNode) Write(offset int64, data []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	n.slots[offset] = cp
	return nil
}

func (n *fakeNode) at(offset int64) []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.slots[offset]
}

func TestSeedSaveCommitsEveryPolicy(t *testing.T) {
	view := &fakeView{}
	primary := newFakeNode("primary.ge")
	secondary := newFakeNode("secondary.ge")

	seed := record.NewSeed(view, record.DataReal{Key: "alice", Value: []byte(`{"email":"a@example.com"}`)})
	seed.Register(record.IndexPolicy{Node: primary, Seek: 16})
	seed.Register(record.IndexPolicy{Node: secondary, Seek: 32})

	locator, err := seed.Save()
	require.NoError(t, err)
	require.Equal(t, uint64(0), locator.Offset)
	require.Positive(t, locator.Length)
	require.Len(t, view.buf, int(locator.Length))

	encoded := locator.Encode()
	require.Equal(t, encoded[:], primary.at(16))
	require.Equal(t, encoded[:], secondary.at(32))
}

func TestSeedRemoveWritesZeroBlock(t *testing.T) {
	view := &fakeView{}
	primary := newFakeNode("primary.ge")

	seed := record.NewSeed(view, record.DataReal{Key: "bob"})
	seed.Register(record.IndexPolicy{Node: primary, Seek: 8})

	require.NoError(t, seed.Remove())
	require.Equal(t, record.ZeroBlock[:], primary.at(8))
}

func TestSeedRemoveWritesCustomBytesTombstone(t *testing.T) {
	view := &fakeView{}
	node := newFakeNode("node.ge")
	custom := []byte{0xAA, 0xBB}

	seed := record.NewSeed(view, record.DataReal{Key: "carl"})
	seed.Register(record.IndexPolicy{Node: node, Seek: 0, CustomBytes: custom})

	require.NoError(t, seed.Remove())
	require.Equal(t, custom, node.at(0))
}

func TestSeedIsSingleUse(t *testing.T) {
	view := &fakeView{}
	seed := record.NewSeed(view, record.DataReal{Key: "dave"})

	_, err := seed.Save()
	require.NoError(t, err)

	_, err = seed.Save()
	require.Error(t, err)
}

func TestSeedSetIncrementReflectedInData(t *testing.T) {
	view := &fakeView{}
	seed := record.NewSeed(view, record.DataReal{Key: "erin"})
	seed.SetIncrement(42)
	require.Equal(t, uint64(42), seed.Data().Increment)
}
