// Package server provides HTTP routing, middleware and JSON handlers for the manga catalog service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Handlers
//
// [ProxyHandler] forwards /api/manga/{path}?{query} to the upstream catalog API and relays its JSON.
// Upstream errors are reported as {"error": "..."} with the upstream status, transport failures as a 500.
//
// [NavigationHandler] answers /api/navigation?title=&chapter=&group= with the previous and next chapter
// of a chapter, resolved by a fresh [navigator.Controller] per request.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
