// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package reference_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osg-htc/institutions/internal/reference"
)

// countingOpener serves fixed content and counts opens; it fails while failing is set.
type countingOpener struct {
	content map[string]string
	opens   atomic.Int32
	failing atomic.Bool
}

func (o *countingOpener) Open(_ context.Context, location string) (io.ReadCloser, error) {
	o.opens.Add(1)
	if o.failing.Load() {
		return nil, errors.New("object store unavailable")
	}
	body, ok := o.content[location]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

/*
TestCatalog_LoadsOnce verifies concurrent lookups parse each dataset a single time.
*/
func TestCatalog_LoadsOnce(t *testing.T) {
	opener := &countingOpener{content: map[string]string{"hd2023.csv": ipedsFixture}}
	catalog := reference.NewCatalog(opener, reference.Locations{IPEDS: "hd2023.csv"}, nil)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, ok, err := catalog.IPEDS(context.Background(), "240444")
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "WI", record.State)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), opener.opens.Load())
}

/*
TestCatalog_RetriesFailedLoad ensures a failed load is not cached.
*/
func TestCatalog_RetriesFailedLoad(t *testing.T) {
	opener := &countingOpener{content: map[string]string{"hd2023.csv": ipedsFixture}}
	opener.failing.Store(true)
	catalog := reference.NewCatalog(opener, reference.Locations{IPEDS: "hd2023.csv"}, nil)

	_, _, err := catalog.IPEDS(context.Background(), "240444")
	require.Error(t, err)

	opener.failing.Store(false)
	_, ok, err := catalog.IPEDS(context.Background(), "240444")
	require.NoError(t, err)
	assert.True(t, ok)
}

/*
TestCatalog_MissesAreNotErrors covers unknown unit ids and unconfigured Carnegie years.
*/
func TestCatalog_MissesAreNotErrors(t *testing.T) {
	opener := &countingOpener{content: map[string]string{"hd2023.csv": ipedsFixture}}
	catalog := reference.NewCatalog(opener, reference.Locations{IPEDS: "hd2023.csv"}, nil)

	_, ok, err := catalog.IPEDS(context.Background(), "000001")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = catalog.Carnegie2021(context.Background(), "240444")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, catalog.Preload(context.Background()))
}

/*
TestCatalog_FileSource reads datasets from disk through Source.
*/
func TestCatalog_FileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hd2023.csv"), []byte(ipedsFixture), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carnegie.csv"), []byte("unitid,basic2021\n240444,15\n"), 0o600))

	catalog := reference.NewCatalog(reference.NewSource(nil), reference.Locations{
		IPEDS:        filepath.Join(dir, "hd2023.csv"),
		Carnegie2021: filepath.Join(dir, "carnegie.csv"),
	}, nil)

	classification, ok, err := catalog.Carnegie2021(context.Background(), "240444")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Doctoral Universities: Very High Research Activity", classification.Label)

	_, _, err = reference.NewCatalog(reference.NewSource(nil), reference.Locations{IPEDS: "s3://bucket/hd.csv"}, nil).
		IPEDS(context.Background(), "240444")
	assert.ErrorContains(t, err, "object storage")
}

/*
TestCatalog_ZeroPaddedUnitID finds records whatever zero padding the dataset or the caller uses.
*/
func TestCatalog_ZeroPaddedUnitID(t *testing.T) {
	fixture := "UNITID,INSTNM,WEBADDR,HBCU,TRIBAL,ICLEVEL,CONTROL,STABBR,INSTSIZE,LATITUDE,LONGITUD\n" +
		"012345,Padded College,www.padded.example/,2,2,1,1,VT,1,44.0,-72.0\n"
	opener := &countingOpener{content: map[string]string{
		"hd2023.csv":   fixture,
		"carnegie.csv": "unitid,basic2021\n12345,15\n",
	}}
	catalog := reference.NewCatalog(opener, reference.Locations{IPEDS: "hd2023.csv", Carnegie2021: "carnegie.csv"}, nil)

	for _, unitID := range []string{"012345", "12345"} {
		record, ok, err := catalog.IPEDS(context.Background(), unitID)
		require.NoError(t, err)
		require.True(t, ok, unitID)
		assert.Equal(t, "VT", record.State)

		_, ok, err = catalog.Carnegie2021(context.Background(), unitID)
		require.NoError(t, err)
		assert.True(t, ok, unitID)
	}
}

func TestStaticCatalog(t *testing.T) {
	catalog := reference.NewStaticCatalog(
		map[string]reference.IPEDSRecord{"240444": {UnitID: "240444", State: "WI"}},
		nil,
		map[string]reference.Classification{"240444": {Code: "1", Label: "R1"}},
	)

	record, ok, err := catalog.IPEDS(context.Background(), "240444")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "WI", record.State)

	_, ok, err = catalog.Carnegie2021(context.Background(), "240444")
	require.NoError(t, err)
	assert.False(t, ok)
}
