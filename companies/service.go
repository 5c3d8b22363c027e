package companies

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"

	"github.com/openjobs/go-jobboard/transport"
)

// Service wraps the company endpoints.
type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[companies.NewService] transport client is required")
	}
	return &Service{client: client}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Company, error) {
	var company Company
	if err := s.client.Get(ctx, "/companies/"+id, &company); err != nil {
		return nil, errors.Wrap(err, "[Service.Get]")
	}
	return &company, nil
}

// Create registers a company for the current employer account.
func (s *Service) Create(ctx context.Context, company Company) (*Company, error) {
	var created Company
	if err := s.client.Post(ctx, "/companies", company, &created); err != nil {
		return nil, errors.Wrap(err, "[Service.Create]")
	}
	return &created, nil
}

func (s *Service) Update(ctx context.Context, id string, company Company) (*Company, error) {
	var updated Company
	if err := s.client.Put(ctx, "/companies/"+id, company, &updated); err != nil {
		return nil, errors.Wrap(err, "[Service.Update]")
	}
	return &updated, nil
}

// UploadLogo sends the logo as a multipart form. The body is fully buffered
// before dispatch so the transport can replay it after a token refresh.
func (s *Service) UploadLogo(ctx context.Context, id, filename string, logo io.Reader) (*Company, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("logo", filename)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.UploadLogo] CreateFormFile")
	}
	if _, err := io.Copy(part, logo); err != nil {
		return nil, errors.Wrap(err, "[Service.UploadLogo] io.Copy")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "[Service.UploadLogo] writer.Close")
	}

	var updated Company
	err = s.client.DoRaw(ctx, http.MethodPost, "/companies/"+id+"/logo", writer.FormDataContentType(), buf.Bytes(), &updated)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.UploadLogo]")
	}
	return &updated, nil
}
