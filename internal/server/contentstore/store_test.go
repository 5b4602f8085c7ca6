package contentstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/logging"
	"github.com/dmitrijs2005/truthchain/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

func mustCID(t *testing.T, data string) string {
	t.Helper()
	c, err := ComputeCID([]byte(data))
	require.NoError(t, err)
	return c
}

func TestComputeCID(t *testing.T) {
	a := mustCID(t, "hello")
	b := mustCID(t, "hello")
	c := mustCID(t, "hello!")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "bafkrei", a[:7], "CIDv1 raw sha2-256 in base32")
}

func TestLocal_UploadAndPath(t *testing.T) {
	l, err := NewLocal(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	assert.Equal(t, "local", l.Name())

	id, err := l.Upload(context.Background(), []byte("image bytes"), "a.png")
	require.NoError(t, err)
	assert.Equal(t, mustCID(t, "image bytes"), id)

	p, err := l.Path(id)
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(b))

	again, err := l.Upload(context.Background(), []byte("image bytes"), "b.png")
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestLocal_PathRejectsNonCID(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = l.Path("../../etc/passwd")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPinata_Upload(t *testing.T) {
	want := mustCID(t, "pinned")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		f, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			b, _ := io.ReadAll(f)
			assert.Equal(t, "pinned", string(b))
			assert.Equal(t, "a.png", hdr.Filename)
		}
		_, _ = w.Write([]byte(`{"IpfsHash":"` + want + `","PinSize":6,"Timestamp":"2024-01-01T00:00:00Z"}`))
	}))
	defer ts.Close()

	p := NewPinata(ts.Client(), ts.URL+"/", "jwt")
	got, err := p.Upload(context.Background(), []byte("pinned"), "a.png")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPinata_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad jwt"}`, "PINATA_JWT"},
		{"invalid json", http.StatusOK, `not json`, "unexpected response"},
		{"missing hash", http.StatusOK, `{}`, "returned no CID"},
		{"bad cid", http.StatusOK, `{"IpfsHash":"not-a-cid"}`, "invalid CID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := NewPinata(ts.Client(), ts.URL, "jwt").Upload(context.Background(), []byte("x"), "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestWeb3Storage_Upload(t *testing.T) {
	want := mustCID(t, "w3")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"cid":"` + want + `"}`))
	}))
	defer ts.Close()

	got, err := NewWeb3Storage(ts.Client(), ts.URL, "tok").Upload(context.Background(), []byte("w3"), "v.mp4")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWeb3Storage_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewWeb3Storage(ts.Client(), ts.URL, "tok").Upload(context.Background(), []byte("x"), "x")
	assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "WEB3_STORAGE_TOKEN")
}

type fakeObjects struct {
	put      *s3.PutObjectInput
	putErr   error
	headErr  error
	metadata map[string]string
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	return &s3.PutObjectOutput{}, f.putErr
}

func (f *fakeObjects) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if aws.ToString(in.Key) != aws.ToString(f.put.Key) {
		return nil, errors.New("no such key")
	}
	return &s3.HeadObjectOutput{Metadata: f.metadata}, nil
}

func withFakeS3(t *testing.T, fake *fakeObjects) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		assert.Equal(t, "https://s3.example", aws.ToString(opts.BaseEndpoint))
		return fake
	}
}

func s3Config() *config.Config {
	return &config.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "key",
		S3RootPassword: "secret",
		S3Bucket:       "truthchain",
		S3BaseEndpoint: "https://s3.example",
	}
}

func TestS3_Upload(t *testing.T) {
	want := mustCID(t, "s3")
	fake := &fakeObjects{metadata: map[string]string{"cid": want}}
	withFakeS3(t, fake)

	s, err := NewS3(context.Background(), s3Config())
	require.NoError(t, err)

	got, err := s.Upload(context.Background(), []byte("s3"), "dir/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "truthchain", aws.ToString(fake.put.Bucket))
	assert.Contains(t, aws.ToString(fake.put.Key), "-photo.jpg")
	assert.Equal(t, int64(2), aws.ToInt64(fake.put.ContentLength))
}

func TestS3_UploadErrors(t *testing.T) {
	t.Run("put fails", func(t *testing.T) {
		withFakeS3(t, &fakeObjects{putErr: errors.New("denied")})
		s, err := NewS3(context.Background(), s3Config())
		require.NoError(t, err)
		_, err = s.Upload(context.Background(), []byte("x"), "x")
		assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	})

	t.Run("head fails", func(t *testing.T) {
		withFakeS3(t, &fakeObjects{headErr: errors.New("gone")})
		s, err := NewS3(context.Background(), s3Config())
		require.NoError(t, err)
		_, err = s.Upload(context.Background(), []byte("x"), "x")
		assert.ErrorIs(t, err, common.ErrUpstreamUnavailable)
	})

	t.Run("no cid metadata", func(t *testing.T) {
		withFakeS3(t, &fakeObjects{metadata: map[string]string{}})
		s, err := NewS3(context.Background(), s3Config())
		require.NoError(t, err)
		_, err = s.Upload(context.Background(), []byte("x"), "x")
		assert.ErrorContains(t, err, "returned no CID")
	})
}

func TestNew_Selection(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{ContentStore: config.StoreAuto, PinataJWT: "jwt", PinataEndpoint: "https://p"}
	s, err := New(ctx, cfg, nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, "pinata", s.Name())

	cfg = &config.Config{ContentStore: config.StoreAuto, Web3StorageToken: "tok"}
	s, err = New(ctx, cfg, nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, "web3storage", s.Name())

	cfg = &config.Config{ContentStore: config.StoreAuto, UploadsDir: t.TempDir(), VerificationMode: common.ModeLive}
	s, err = New(ctx, cfg, nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, "local", s.Name())

	withFakeS3(t, &fakeObjects{})
	s, err = New(ctx, s3Config(), nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, "s3", s.Name())
}
