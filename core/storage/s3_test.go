package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3StorePutObject(t *testing.T) {
	client := &fakeS3{}
	store := newS3StoreWithClient(client, "invites")

	location, err := store.PutObject(context.Background(), "/bookings/abc.ics", []byte("BEGIN:VCALENDAR"), "text/calendar")
	if err != nil {
		t.Fatalf("PutObject returned error: %v", err)
	}
	if location != "s3://invites/bookings/abc.ics" {
		t.Fatalf("unexpected location %q", location)
	}
	if aws.ToString(client.input.Key) != "bookings/abc.ics" {
		t.Fatalf("leading slash not trimmed: %q", aws.ToString(client.input.Key))
	}
	if string(client.body) != "BEGIN:VCALENDAR" {
		t.Fatalf("unexpected body %q", client.body)
	}
}

func TestS3StorePropagatesErrors(t *testing.T) {
	store := newS3StoreWithClient(&fakeS3{err: errors.New("denied")}, "invites")
	if _, err := store.PutObject(context.Background(), "k", nil, "text/plain"); err == nil {
		t.Fatal("expected error from client")
	}

	unconfigured := newS3StoreWithClient(&fakeS3{}, "")
	if _, err := unconfigured.PutObject(context.Background(), "k", nil, "text/plain"); err == nil {
		t.Fatal("expected error without bucket")
	}
}
