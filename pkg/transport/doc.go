// Package transport defines the request-sending contract resources use and
// ships two implementations of it.
//
// A Sender takes a fully resolved Request (method, URL, query or body,
// headers) and returns a Response whose OK flag tells the caller whether the
// remote side accepted it. Senders do not retry and add no timeout of their
// own; cancellation comes from the context.
//
//   - HTTPSender talks JSON over net/http.
//   - S3Sender stores each entity as a JSON object in an S3 bucket, so a
//     resource can be backed by object storage without a REST server.
//
// Tests usually use the transporttest package instead.
package transport
