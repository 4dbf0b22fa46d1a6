package registry

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	js "github.com/adobe/reactor-extension-alloy-sub003/jsonschema"
)

// Sandbox is a named, isolated customer data environment.
type Sandbox struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	IsDefault bool   `json:"isDefault"`
}

// FetchSandboxes lists the sandboxes the caller can access.
func (c *Client) FetchSandboxes(ctx context.Context) ([]Sandbox, error) {
	var body struct {
		Sandboxes []Sandbox `json:"sandboxes"`
	}
	err := c.get(ctx, request{url: c.cfg.BaseURL + "/data/foundation/sandbox-management/"}, &body)
	if err != nil {
		return nil, err
	}
	return body.Sandboxes, nil
}

// SchemaMeta describes a schema without its body.
type SchemaMeta struct {
	ID      string `json:"$id"`
	AltID   string `json:"meta:altId"`
	Title   string `json:"title"`
	Version string `json:"version"`
}

// FetchSchemasMeta lists the experience event schemas of a sandbox. start
// is empty for the first page and NextPage of the previous page otherwise.
// search filters titles when non-empty.
func (c *Client) FetchSchemasMeta(ctx context.Context, sandbox, search, start string) (Page[SchemaMeta], error) {
	q := url.Values{}
	q.Set("orderby", "title")
	q.Add("property", "meta:extends==https://ns.adobe.com/xdm/context/experienceevent")
	if search != "" {
		q.Add("property", "title~"+search)
	}
	if start != "" {
		q.Set("start", start)
	}
	var body struct {
		Results []SchemaMeta `json:"results"`
		Page    struct {
			Next string `json:"next"`
		} `json:"_page"`
	}
	err := c.get(ctx, request{
		url:     c.cfg.BaseURL + "/data/foundation/schemaregistry/tenant/schemas",
		accept:  "application/vnd.adobe.xed-id+json",
		sandbox: sandbox,
		query:   q,
	}, &body)
	if err != nil {
		return Page[SchemaMeta]{}, err
	}
	return Page[SchemaMeta]{Results: body.Results, NextPage: body.Page.Next}, nil
}

// FetchSchema returns the fully resolved body of a schema version.
func (c *Client) FetchSchema(ctx context.Context, sandbox, id, version string) (*js.Schema, error) {
	if version == "" {
		version = "1"
	}
	var raw json.RawMessage
	err := c.get(ctx, request{
		url:     c.cfg.BaseURL + "/data/foundation/schemaregistry/tenant/schemas/" + url.PathEscape(id),
		accept:  "application/vnd.adobe.xed-full+json;version=" + version,
		sandbox: sandbox,
	}, &raw)
	if err != nil {
		return nil, err
	}
	s, _, err := js.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("registry: schema %s: %w", id, err)
	}
	return s, nil
}

// Datastream is an edge configuration.
type Datastream struct {
	ID    string
	Title string
}

type edgeRecord struct {
	Data struct {
		Title string `json:"title"`
	} `json:"data"`
	System struct {
		ID string `json:"id"`
	} `json:"_system"`
}

type edgePage struct {
	Embedded struct {
		Records []edgeRecord `json:"records"`
	} `json:"_embedded"`
	Links struct {
		Next struct {
			Href string `json:"href"`
		} `json:"next"`
	} `json:"_links"`
}

// FetchDatastreams lists the datastreams of a sandbox. next is empty for the
// first page and NextPage of the previous page otherwise.
func (c *Client) FetchDatastreams(ctx context.Context, sandbox, next string) (Page[Datastream], error) {
	u := c.cfg.EdgeURL + "/metadata/namespaces/edge/datasets/datastreams/records"
	q := url.Values{"orderby": {"title"}, "limit": {"1000"}}
	return c.fetchEdge(ctx, sandbox, u, q, next)
}

// FetchEnvironments lists the environments (production, staging,
// development) configured on a datastream.
func (c *Client) FetchEnvironments(ctx context.Context, sandbox, datastreamID, next string) (Page[Datastream], error) {
	u := c.cfg.EdgeURL + "/metadata/namespaces/edge/datasets/datastreams/records/" + url.PathEscape(datastreamID) + "/environments"
	return c.fetchEdge(ctx, sandbox, u, nil, next)
}

func (c *Client) fetchEdge(ctx context.Context, sandbox, u string, q url.Values, next string) (Page[Datastream], error) {
	r := request{url: u, query: q, sandbox: sandbox}
	if next != "" {
		r = request{url: c.resolve(c.cfg.EdgeURL, next), sandbox: sandbox}
	}
	var body edgePage
	if err := c.get(ctx, r, &body); err != nil {
		return Page[Datastream]{}, err
	}
	out := Page[Datastream]{NextPage: body.Links.Next.Href}
	for _, rec := range body.Embedded.Records {
		out.Results = append(out.Results, Datastream{ID: rec.System.ID, Title: rec.Data.Title})
	}
	return out, nil
}

// resolve turns a relative "next" link into an absolute URL on base.
func (c *Client) resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// DataElement is a data element defined on a tags property.
type DataElement struct {
	ID   string
	Name string
}

// FetchDataElements lists the data elements of a property. page is empty
// for the first page and NextPage of the previous page otherwise.
func (c *Client) FetchDataElements(ctx context.Context, propertyID, search, page string) (Page[DataElement], error) {
	q := url.Values{}
	if page != "" {
		q.Set("page[number]", page)
	}
	if search != "" {
		q.Set("filter[name]", "CONTAINS "+search)
	}
	var body struct {
		Data []struct {
			ID         string `json:"id"`
			Attributes struct {
				Name string `json:"name"`
			} `json:"attributes"`
		} `json:"data"`
		Meta struct {
			Pagination struct {
				NextPage *int `json:"next_page"`
			} `json:"pagination"`
		} `json:"meta"`
	}
	err := c.get(ctx, request{
		url:    c.cfg.ReactorURL + "/properties/" + url.PathEscape(propertyID) + "/data_elements",
		accept: "application/vnd.api+json;revision=1",
		query:  q,
	}, &body)
	if err != nil {
		return Page[DataElement]{}, err
	}
	out := Page[DataElement]{}
	for _, d := range body.Data {
		out.Results = append(out.Results, DataElement{ID: d.ID, Name: d.Attributes.Name})
	}
	if n := body.Meta.Pagination.NextPage; n != nil {
		out.NextPage = strconv.Itoa(*n)
	}
	return out, nil
}

// DataElementDetail is a data element with its decoded settings.
type DataElementDetail struct {
	ID                   string
	Name                 string
	DelegateDescriptorID string
	Settings             map[string]any
}

// FetchDataElement returns one data element. The API stores settings as a
// JSON string; it is decoded here.
func (c *Client) FetchDataElement(ctx context.Context, id string) (DataElementDetail, error) {
	var body struct {
		Data struct {
			ID         string `json:"id"`
			Attributes struct {
				Name                 string `json:"name"`
				DelegateDescriptorID string `json:"delegate_descriptor_id"`
				Settings             string `json:"settings"`
			} `json:"attributes"`
		} `json:"data"`
	}
	err := c.get(ctx, request{
		url:    c.cfg.ReactorURL + "/data_elements/" + url.PathEscape(id),
		accept: "application/vnd.api+json;revision=1",
	}, &body)
	if err != nil {
		return DataElementDetail{}, err
	}
	out := DataElementDetail{
		ID:                   body.Data.ID,
		Name:                 body.Data.Attributes.Name,
		DelegateDescriptorID: body.Data.Attributes.DelegateDescriptorID,
	}
	if s := body.Data.Attributes.Settings; s != "" {
		if err := json.Unmarshal([]byte(s), &out.Settings); err != nil {
			return DataElementDetail{}, fmt.Errorf("registry: data element %s settings: %w", id, err)
		}
	}
	return out, nil
}
