package ports

import "context"

// Cache es el almacén en memoria compartido por todos los consumidores de
// una sesión de admin, con claves por colección+id ("vendors",
// "vendors/<id>", "participants/<slug>"). El executor de mutaciones lo usa
// con semántica snapshot/apply/commit/rollback.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)

	// BeginRefetch registra un refetch en vuelo para la clave y devuelve
	// un contexto derivado que CancelRefetch cancela.
	BeginRefetch(ctx context.Context, key string) (context.Context, context.CancelFunc)

	// CancelRefetch aborta cualquier refetch en vuelo para la clave. Se
	// llama antes de aplicar un valor optimista, para que un fetch lento
	// no lo pise con datos stale.
	CancelRefetch(key string)
}
