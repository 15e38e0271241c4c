package server

// Данный сервер просто объединяет специфичные HTTP сервера, отвечающие за обработку конкретных сущностей
type Server struct {
	DiscoveryServer
}

func NewServer(
	discoveryServer DiscoveryServer,
) Server {
	return Server{
		DiscoveryServer: discoveryServer,
	}
}
