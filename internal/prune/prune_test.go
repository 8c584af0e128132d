package prune

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceph/quay-pruner/internal/registry"
	registrymocks "github.com/ceph/quay-pruner/internal/registry/mocks"
	"github.com/ceph/quay-pruner/internal/shaman"
)

func TestPruner_Run(t *testing.T) {
	ctx := context.Background()

	tags := []registry.Tag{
		tag("main-abc1234-centos-8-x86_64-devel", "img1"),
		tag("wip-bar-0badbee-centos-8-x86_64-devel", "img2"),
		tag(goneHash, "img2"),
		expired(tag("wip-old-1111111-centos-8-x86_64-devel", "img3")),
	}

	t.Run("dry run reports two candidates and deletes nothing", func(t *testing.T) {
		client := &registrymocks.ClientMock{
			ListTagsFunc: func(context.Context) ([]registry.Tag, error) { return tags, nil },
		}
		searcher := fakeShaman(shaman.Build{SHA1: liveHash, Ref: "main"})
		var out bytes.Buffer

		report, err := New(client, searcher, Options{DryRun: true, Out: &out}).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t,
			"Would delete from quay: "+goneHash+"\n"+
				"Would delete from quay: wip-bar-0badbee-centos-8-x86_64-devel\n",
			out.String())
		assert.Len(t, report.Planned, 2)
		assert.Empty(t, client.DeleteTagCalls())
	})

	t.Run("deletes candidates", func(t *testing.T) {
		client := &registrymocks.ClientMock{
			ListTagsFunc:  func(context.Context) ([]registry.Tag, error) { return tags, nil },
			DeleteTagFunc: func(context.Context, string) error { return nil },
		}
		searcher := fakeShaman(shaman.Build{SHA1: liveHash, Ref: "main"})

		report, err := New(client, searcher, Options{}).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{goneHash, "wip-bar-0badbee-centos-8-x86_64-devel"}, report.Deleted)
		assert.Len(t, client.DeleteTagCalls(), 2)
	})

	t.Run("continues with partial listing", func(t *testing.T) {
		client := &registrymocks.ClientMock{
			ListTagsFunc: func(context.Context) ([]registry.Tag, error) {
				return tags[:2], fmt.Errorf("%w: page 2: boom", registry.ErrListingFailed)
			},
			DeleteTagFunc: func(context.Context, string) error { return nil },
		}
		searcher := fakeShaman(shaman.Build{SHA1: liveHash, Ref: "main"})

		report, err := New(client, searcher, Options{}).Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, []string{"wip-bar-0badbee-centos-8-x86_64-devel"}, report.Deleted)
	})

	t.Run("reports interrupted run", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		client := &registrymocks.ClientMock{
			ListTagsFunc: func(context.Context) ([]registry.Tag, error) { return nil, nil },
		}

		_, err := New(client, fakeShaman(), Options{DryRun: true}).Run(canceled)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
