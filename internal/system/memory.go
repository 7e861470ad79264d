package system

// AvailableMemory возвращает доступную физическую память в байтах.
// Ноль означает, что значение получить не удалось.
func AvailableMemory() uint64 {
	n, err := availableMemory()
	if err != nil {
		return 0
	}
	return n
}
