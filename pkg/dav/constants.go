package dav

// Methods is the full set of verbs the dispatcher understands,
// advertised in Allow and in the CORS method list. PROPPATCH, COPY and
// MOVE are accepted but answered with 501.
var Methods = []string{
	"GET",
	"HEAD",
	"PUT",
	"DELETE",
	"OPTIONS",
	"MKCOL",
	"PROPFIND",
	"PROPPATCH",
	"COPY",
	"MOVE",
	"LOCK",
	"UNLOCK",
}

var allowedHeaders = []string{
	"Authorization",
	"Content-Type",
	"Depth",
	"Overwrite",
	"Destination",
	"Range",
}

var exposedHeaders = []string{
	"Content-Length",
	"Content-Type",
	"Content-Range",
	"Dav",
	"Date",
	"ETag",
	"Last-Modified",
	"Location",
	"Lock-Token",
	"X-WebDAV-Status",
}

const notFoundPage = `<!DOCTYPE HTML PUBLIC "-//IETF//DTD HTML 2.0//EN"><html><head><title>404 Not Found</title></head><body><h1>Not Found</h1><p>The requested URL was not found on this server.</p></body></html>`
