// Package generate turns natural-language requests into diagram schemas and
// assistant replies.
//
// # Structured Generation
//
// A [Generator] returns the raw schema object for a description. The object
// is untrusted: it goes through schema.Validate before anything is built
// from it. [OpenAI] asks a chat-completion model for a JSON object, using a
// system prompt that lists every supported node type:
//
//	gen, err := generate.NewOpenAI(generate.Config{APIKey: key}, logger)
//	raw, err := gen.Generate(ctx, "An ALB in front of two EC2 web servers and an RDS database")
//
// [Func] adapts a plain function and [Static] always returns the same schema,
// which is how tests and offline runs avoid the network.
//
// # Assistant
//
// An [Assistant] holds a conversation about the user's architecture. When it
// has gathered enough detail it sets [Reply.InvokeDiagramGeneration] to a
// complete description that the caller passes to a Generator. The
// [Conversation] is supplied by the caller on every call; nothing is kept
// between calls.
//
// # Errors
//
// Every failure is a GENERATION error. Rate limits and 5xx responses from the
// model API are retried with backoff before giving up.
package generate
