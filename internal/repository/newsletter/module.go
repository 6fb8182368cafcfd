package newsletter

import "go.uber.org/fx"

// Module provides the subscriber repository to Fx.
var Module = fx.Provide(NewRepository)
