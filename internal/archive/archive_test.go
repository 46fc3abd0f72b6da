package archive

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tencentyun/cos-go-sdk-v5"

	"support-relay/internal/config"
	"support-relay/internal/models"
	"support-relay/internal/relay"
)

func testTranscript() *relay.Transcript {
	return &relay.Transcript{
		ID:       "7f1c",
		UserID:   42,
		ActorID:  100,
		Category: models.CategoryAdvertise,
		ClosedAt: time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC),
		Body:     "[2026-03-14 12:00:00] [advertise] user_to_admin: hello\n",
	}
}

type putCall struct {
	name        string
	body        string
	contentType string
}

type fakeObjects struct {
	calls []putCall
	err   error
}

func (f *fakeObjects) Put(_ context.Context, name string, r io.Reader, opt *cos.ObjectPutOptions) (*cos.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, putCall{name: name, body: string(body), contentType: opt.ContentType})
	return &cos.Response{}, nil
}

func TestCOSSinkArchive(t *testing.T) {
	objects := &fakeObjects{}
	sink := NewCOSSinkWithObjects(objects, "/transcripts/")

	require.NoError(t, sink.Archive(context.Background(), testTranscript()))
	require.Len(t, objects.calls, 1)
	assert.Equal(t, "transcripts/2026/03/14/transcript-42-7f1c.txt", objects.calls[0].name)
	assert.Equal(t, testTranscript().Body, objects.calls[0].body)
	assert.Equal(t, "text/plain; charset=utf-8", objects.calls[0].contentType)

	objects.err = errors.New("403 AccessDenied")
	err := sink.Archive(context.Background(), testTranscript())
	assert.ErrorContains(t, err, "AccessDenied")
}

func TestNewCOSSinkRejectsBadURL(t *testing.T) {
	_, err := NewCOSSink(config.COSConfig{BucketURL: "not a url"})
	assert.Error(t, err)

	sink, err := NewCOSSink(config.COSConfig{BucketURL: "https://bucket-1250000000.cos.ap-guangzhou.myqcloud.com", Prefix: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x/2026/03/14/transcript-42-7f1c.txt", sink.ObjectName(testTranscript()))
}

type fakeSender struct {
	params []*telego.SendDocumentParams
	err    error
}

func (f *fakeSender) SendDocument(_ context.Context, params *telego.SendDocumentParams) (*telego.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.params = append(f.params, params)
	return &telego.Message{MessageID: len(f.params)}, nil
}

func TestTelegramSinkArchive(t *testing.T) {
	sender := &fakeSender{}
	sink := NewTelegramSink(sender, -1001, models.LangEnglish)

	require.NoError(t, sink.Archive(context.Background(), testTranscript()))
	require.Len(t, sender.params, 1)
	params := sender.params[0]
	assert.Equal(t, int64(-1001), params.ChatID.ID)
	assert.Equal(t, telego.ModeHTML, params.ParseMode)
	require.NotNil(t, params.Document.File)
	assert.Equal(t, "transcript-42-7f1c.txt", params.Document.File.Name())
	assert.Contains(t, params.Caption, "<code>42</code>")
	assert.Contains(t, params.Caption, "2026-03-14 12:30:00 UTC")

	sender.err = errors.New("chat not found")
	assert.Error(t, sink.Archive(context.Background(), testTranscript()))
}

func TestCaptionFollowsLanguage(t *testing.T) {
	assert.Contains(t, Caption(models.LangIndonesian, testTranscript()), "Kategori: 📣 Advertiser Specialist")
	assert.Contains(t, Caption(models.LangEnglish, testTranscript()), "Category: 📣 Advertiser Specialist")
}

type stubSink struct {
	calls int
	err   error
}

func (s *stubSink) Archive(context.Context, *relay.Transcript) error {
	s.calls++
	return s.err
}

func TestMultiSinkTriesEverySink(t *testing.T) {
	failing := &stubSink{err: errors.New("archive chat down")}
	ok := &stubSink{}

	err := MultiSink{failing, ok}.Archive(context.Background(), testTranscript())
	assert.ErrorContains(t, err, "archive chat down")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)

	assert.NoError(t, MultiSink{ok}.Archive(context.Background(), testTranscript()))
	assert.NoError(t, MultiSink{}.Archive(context.Background(), testTranscript()))
}
