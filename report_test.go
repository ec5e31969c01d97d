package serp_test

import (
	"testing"

	"github.com/fwojciec/serp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionReport_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts known engine", func(t *testing.T) {
		t.Parallel()

		r := &serp.SessionReport{Engine: serp.EngineMojeek, Query: "golang"}

		assert.NoError(t, r.Validate())
	})

	t.Run("requires engine", func(t *testing.T) {
		t.Parallel()

		r := &serp.SessionReport{Query: "golang"}

		err := r.Validate()

		require.Error(t, err)
		assert.Equal(t, serp.EINVALID, serp.ErrorCode(err))
	})

	t.Run("rejects unknown engine", func(t *testing.T) {
		t.Parallel()

		r := &serp.SessionReport{Engine: "altavista"}

		assert.Equal(t, serp.EUNKNOWNENGINE, serp.ErrorCode(r.Validate()))
	})
}
