// Package notion implements threadlink.PageTracker on top of the Notion API.
// Pages are created as rows of a single configured database.
package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/pkg/errors"

	"threadlink"
)

// Config configures a Client. The property names must match the target
// database's schema; the zero values match a stock task database.
type Config struct {
	Token      string
	DatabaseID string

	TitleProperty    string // default "Name"
	StatusProperty   string // default "Status"
	PriorityProperty string // default "Priority"
	TagsProperty     string // default "Tags"

	InitialStatus string // status set on creation; default "Not started"
	DoneStatus    string // status set on close; default "Done"
}

// Client is a stateless page-tracker adapter for one Notion database.
type Client struct {
	api *notionapi.Client
	c   Config
}

var _ threadlink.PageTracker = &Client{}

func New(c Config) *Client {
	if c.TitleProperty == "" {
		c.TitleProperty = "Name"
	}
	if c.StatusProperty == "" {
		c.StatusProperty = "Status"
	}
	if c.PriorityProperty == "" {
		c.PriorityProperty = "Priority"
	}
	if c.TagsProperty == "" {
		c.TagsProperty = "Tags"
	}
	if c.InitialStatus == "" {
		c.InitialStatus = "Not started"
	}
	if c.DoneStatus == "" {
		c.DoneStatus = "Done"
	}
	return &Client{
		api: notionapi.NewClient(notionapi.Token(c.Token)),
		c:   c,
	}
}

// Notion truncates long rich-text content; keep the page body within bounds.
const maxBodyLen = 2000

func (cl *Client) CreatePage(ctx context.Context, req threadlink.PageRequest) (*threadlink.Page, error) {
	props := notionapi.Properties{
		cl.c.TitleProperty: notionapi.TitleProperty{
			Title: richText(req.Title),
		},
		cl.c.StatusProperty: notionapi.StatusProperty{
			Status: notionapi.Status{Name: cl.c.InitialStatus},
		},
	}
	if req.Priority != "" {
		props[cl.c.PriorityProperty] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(req.Priority)},
		}
	}
	if len(req.Tags) > 0 {
		opts := make([]notionapi.Option, 0, len(req.Tags))
		for _, tag := range req.Tags {
			opts = append(opts, notionapi.Option{Name: tag})
		}
		props[cl.c.TagsProperty] = notionapi.MultiSelectProperty{MultiSelect: opts}
	}

	body := req.Description
	if len(body) > maxBodyLen {
		body = body[:maxBodyLen]
	}

	page, err := cl.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(cl.c.DatabaseID),
		},
		Properties: props,
		Children: []notionapi.Block{
			notionapi.ParagraphBlock{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeParagraph,
				},
				Paragraph: notionapi.Paragraph{
					RichText: richText(body),
				},
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating page")
	}
	return &threadlink.Page{ID: string(page.ID), URL: page.URL}, nil
}

func (cl *Client) UpdatePageProperty(ctx context.Context, pageID string, patch map[string]string) error {
	props := notionapi.Properties{}
	for prop, value := range patch {
		switch prop {
		case threadlink.PagePropStatus:
			props[cl.c.StatusProperty] = notionapi.StatusProperty{
				Status: notionapi.Status{Name: cl.statusOption(value)},
			}
		case threadlink.PagePropPriority:
			props[cl.c.PriorityProperty] = notionapi.SelectProperty{
				Select: notionapi.Option{Name: value},
			}
		default:
			return errors.Errorf("unknown page property %q", prop)
		}
	}
	_, err := cl.api.Page.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{
		Properties: props,
	})
	return errors.Wrapf(err, "updating page %s", pageID)
}

func (cl *Client) GetPage(ctx context.Context, pageID string) (*threadlink.Page, error) {
	page, err := cl.api.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return nil, errors.Wrapf(err, "getting page %s", pageID)
	}
	return &threadlink.Page{
		ID:         string(page.ID),
		URL:        page.URL,
		Properties: flattenProperties(page.Properties),
	}, nil
}

// statusOption maps the core's abstract status values onto the database's
// option names.
func (cl *Client) statusOption(value string) string {
	if value == threadlink.PageStatusDone {
		return cl.c.DoneStatus
	}
	return value
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: content}},
	}
}

// flattenProperties reduces a page's properties to plain strings for status
// reporting. Property types with no sensible text form are skipped.
func flattenProperties(props notionapi.Properties) map[string]string {
	result := make(map[string]string, len(props))
	for name, prop := range props {
		switch p := prop.(type) {
		case *notionapi.TitleProperty:
			result[name] = plainText(p.Title)
		case *notionapi.RichTextProperty:
			result[name] = plainText(p.RichText)
		case *notionapi.StatusProperty:
			result[name] = p.Status.Name
		case *notionapi.SelectProperty:
			result[name] = p.Select.Name
		case *notionapi.MultiSelectProperty:
			names := make([]string, 0, len(p.MultiSelect))
			for _, opt := range p.MultiSelect {
				names = append(names, opt.Name)
			}
			result[name] = strings.Join(names, ", ")
		}
	}
	return result
}

func plainText(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, r := range rt {
		b.WriteString(r.PlainText)
	}
	return b.String()
}
