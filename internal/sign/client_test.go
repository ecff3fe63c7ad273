package sign

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSignOK(t *testing.T) {
	var gotPath, gotData string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotData = gjson.GetBytes(b, "data").String()
		w.Write([]byte(`{"status":"ok","data":"sig-abc"}`))
	}))
	defer srv.Close()

	c := New(srv.Client(), nil)
	sig, err := c.Sign(context.Background(), srv.URL+"/", "fp-123")
	require.NoError(t, err)
	assert.Equal(t, "sig-abc", sig)
	assert.Equal(t, "/dramabox/sign", gotPath)
	assert.Equal(t, "fp-123", gotData)
}

func TestSignNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"error","message":"nope"}`))
	}))
	defer srv.Close()

	c := New(srv.Client(), nil)
	_, err := c.Sign(context.Background(), srv.URL, "fp")
	var se *SignError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Raw, "nope")
}

func TestSignEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ok","data":""}`))
	}))
	defer srv.Close()

	c := New(srv.Client(), nil)
	_, err := c.Sign(context.Background(), srv.URL, "fp")
	var se *SignError
	require.ErrorAs(t, err, &se)
}
