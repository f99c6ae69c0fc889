// Package server exposes the configuration store, upload saver and command
// runner to the chat front end over HTTP.
//
// Routes:
//
//	GET  /api/status                 preflight results
//	GET  /api/config/{name}          read a configuration document
//	PUT  /api/config/{name}          normalize and save a document (?merge=false skips regeneration)
//	POST /api/config/regenerate      rebuild the global document
//	POST /api/uploads                save the multipart field "file"
//	POST /api/exec                   stream command output as NDJSON (exec.enabled only)
//
// When api.token is set every route requires "Authorization: Bearer <token>".
package server
