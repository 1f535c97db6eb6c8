package artifact

import (
	"fmt"
	"io"
	"strings"

	postman "github.com/rbretecher/go-postman-collection"
)

const baseURLVariable = "baseUrl"

// BuildPostman converts the generated command set into a Postman collection
// with one folder per resource path and one request per action.
func BuildPostman(data *SiteData) *postman.Collection {
	c := postman.CreateCollection(data.Title, data.Description)
	c.Variables = append(c.Variables, &postman.Variable{
		Key:   baseURLVariable,
		Value: data.BaseURL,
	})

	folders := make(map[string]*postman.Items)
	for _, cmd := range data.Commands {
		req := &postman.Request{
			URL: &postman.URL{
				Raw: postmanURL(cmd),
			},
			Header: []*postman.Header{
				{Key: "Accept", Value: "application/json"},
			},
		}
		if !setMethod(req, cmd.Method) {
			continue
		}
		if cmd.HasBody {
			req.Header = append(req.Header, &postman.Header{Key: "Content-Type", Value: "application/json"})
			req.Body = &postman.Body{Mode: "raw", Raw: "{}"}
		}

		resource := strings.Join(cmd.Path[:len(cmd.Path)-1], " ")
		folder, ok := folders[resource]
		if !ok {
			folder = c.AddItemGroup(resource)
			folders[resource] = folder
		}

		name := cmd.Path[len(cmd.Path)-1]
		if cmd.Summary != "" {
			name = comment(cmd.Summary)
		}
		folder.AddItem(&postman.Items{Name: name, Request: req})
	}
	return c
}

// WritePostman writes the Postman v2.1 collection for data to w.
func WritePostman(w io.Writer, data *SiteData) error {
	if err := BuildPostman(data).Write(w, postman.V210); err != nil {
		return fmt.Errorf("writing postman collection: %w", err)
	}
	return nil
}

// postmanURL rewrites {name} placeholders as Postman :name path variables
// and leaves empty query slots for required non-path parameters.
func postmanURL(cmd Command) string {
	path := placeholderToVariable(cmd.Template)
	raw := "{{" + baseURLVariable + "}}" + path

	var query []string
	for _, p := range cmd.Positionals {
		if p.In != "path" {
			query = append(query, p.Name+"=")
		}
	}
	if len(query) > 0 {
		raw += "?" + strings.Join(query, "&")
	}
	return raw
}

func placeholderToVariable(template string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(template, '{')
		if start < 0 {
			break
		}
		end := strings.IndexByte(template[start:], '}')
		if end < 0 {
			break
		}
		b.WriteString(template[:start])
		b.WriteString(":")
		b.WriteString(template[start+1 : start+end])
		template = template[start+end+1:]
	}
	b.WriteString(template)
	return b.String()
}

// setMethod sets the request method, reporting false for verbs Postman
// does not model.
func setMethod(req *postman.Request, verb string) bool {
	switch strings.ToUpper(verb) {
	case "GET":
		req.Method = postman.Get
	case "POST":
		req.Method = postman.Post
	case "PUT":
		req.Method = postman.Put
	case "PATCH":
		req.Method = postman.Patch
	case "DELETE":
		req.Method = postman.Delete
	case "HEAD":
		req.Method = postman.Head
	case "OPTIONS":
		req.Method = postman.Options
	default:
		return false
	}
	return true
}
