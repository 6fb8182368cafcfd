package newsletter

import "go.uber.org/fx"

// Module wires HTTP newsletter handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(Register),
)
